package log

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// formatter renders entries through a pattern with the placeholders
// %time, %level, %field, %msg, %caller, %func and %goroutine.
type formatter struct {
	pattern string
	time    string
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	args := []string{
		"%time", entry.Time.Format(f.time),
		"%level", entry.Level.String(),
		"%field", buildFields(entry),
		"%msg", entry.Message,
	}
	if strings.Contains(f.pattern, "%caller") {
		args = append(args, "%caller", caller())
	}
	if strings.Contains(f.pattern, "%func") {
		args = append(args, "%func", funcName())
	}
	if strings.Contains(f.pattern, "%goroutine") {
		args = append(args, "%goroutine", goroutineID())
	}
	return []byte(strings.NewReplacer(args...).Replace(f.pattern)), nil
}

// callerFrame finds the first frame outside logrus and the adapter types.
func callerFrame() (runtime.Frame, bool) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "github.com/sirupsen/logrus") &&
			!strings.HasPrefix(f.Function, selfPackage+".(*") {
			return f, true
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

var selfPackage = func() string {
	name := runtime.FuncForPC(reflect.ValueOf(goroutineID).Pointer()).Name()
	return name[:strings.LastIndex(name, ".")]
}()

// caller is "pkg/file.go:line".
func caller() string {
	f, ok := callerFrame()
	if !ok {
		return "unknown"
	}
	pkg := f.Function
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}
	if i := strings.Index(pkg, "."); i >= 0 {
		pkg = pkg[:i]
	}
	return fmt.Sprintf("%s/%s:%d", pkg, filepath.Base(f.File), f.Line)
}

func funcName() string {
	f, ok := callerFrame()
	if !ok {
		return "unknown"
	}
	if i := strings.LastIndex(f.Function, "."); i >= 0 {
		return f.Function[i+1:]
	}
	return f.Function
}

func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(id) > 0 {
		return id[0]
	}
	return "unknown"
}

// buildFields renders entry data as sorted key=value pairs.
func buildFields(entry *logrus.Entry) string {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, k+"="+fmt.Sprint(entry.Data[k]))
	}
	return strings.Join(fields, ",")
}
