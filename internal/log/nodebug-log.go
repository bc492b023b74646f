//go:build !debug
// +build !debug

package log

func init() {
	backend = func(kind string, level Level, msg string) {}
}
