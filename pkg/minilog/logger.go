package minilog

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

type logger interface {
	Println(...interface{})
}

type minilogger struct {
	logger

	Level Level
	Color bool
}

func (l *minilogger) prologue(level Level, name string) (msg string) {
	msg += level.String() + " "

	if name == "" {
		_, file, line, _ := runtime.Caller(4)
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		msg += short + ":" + strconv.Itoa(line) + ": "
	} else {
		msg += name + ": "
	}

	if l.Color {
		msg = colorLine + msg
		switch level {
		case DEBUG:
			msg += colorDebug
		case INFO:
			msg += colorInfo
		case WARN:
			msg += colorWarn
		case ERROR:
			msg += colorError
		default:
			msg += colorFatal
		}
	}
	return
}

func (l *minilogger) epilogue() string {
	if l.Color {
		return Reset
	}
	return ""
}

func (l *minilogger) log(level Level, name, format string, arg ...interface{}) {
	if level < l.Level {
		return
	}
	msg := l.prologue(level, name) + fmt.Sprintf(format, arg...) + l.epilogue()
	l.Println(msg)
}

func (l *minilogger) logln(level Level, name string, arg ...interface{}) {
	if level < l.Level {
		return
	}
	msg := l.prologue(level, name) + strings.TrimSuffix(fmt.Sprintln(arg...), "\n") + l.epilogue()
	l.Println(msg)
}
