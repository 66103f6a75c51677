package config

import "fmt"

func errBadReplicaof(val string) error {
	return fmt.Errorf(`config: --replicaof must be "<host> <port>", got %q`, val)
}
