package minilog

import (
	"log"
	"os"
	"sync"
)

const historySize = 1024

var (
	mu        sync.Mutex
	loggers   = map[string]*minilogger{}
	history   = NewRing(historySize)
	LevelFlag = INFO
)

// Init installs a stdout logger at LevelFlag, colored when stdout is a
// terminal.
func Init() {
	AddLogger("stdout", log.New(os.Stdout, "", 0), LevelFlag, isTerminal(os.Stdout))
}

// AddLogger registers a named output target. "history" is always present.
func AddLogger(name string, l logger, level Level, color bool) {
	mu.Lock()
	defer mu.Unlock()
	loggers[name] = &minilogger{logger: l, Level: level, Color: color}
	if _, ok := loggers["history"]; !ok {
		loggers["history"] = &minilogger{logger: history, Level: DEBUG}
	}
}

func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(loggers, name)
}

// History returns recent log lines, oldest first, for introspection (e.g.
// an "INFO logs" admin command).
func History() []string {
	return history.Dump()
}

func WillLog(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if level >= l.Level {
			return true
		}
	}
	return false
}

func dispatch(level Level, format string, arg ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		l.log(level, "", format, arg...)
	}
}

func dispatchln(level Level, arg ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		l.logln(level, "", arg...)
	}
}

func Debug(format string, arg ...interface{}) { dispatch(DEBUG, format, arg...) }
func Info(format string, arg ...interface{})  { dispatch(INFO, format, arg...) }
func Warn(format string, arg ...interface{})  { dispatch(WARN, format, arg...) }
func Error(format string, arg ...interface{}) { dispatch(ERROR, format, arg...) }

func Debugln(arg ...interface{}) { dispatchln(DEBUG, arg...) }
func Infoln(arg ...interface{})  { dispatchln(INFO, arg...) }
func Warnln(arg ...interface{})  { dispatchln(WARN, arg...) }
func Errorln(arg ...interface{}) { dispatchln(ERROR, arg...) }

func Fatal(format string, arg ...interface{}) {
	dispatch(FATAL, format, arg...)
	os.Exit(1)
}

func Fatalln(arg ...interface{}) {
	dispatchln(FATAL, arg...)
	os.Exit(1)
}
