// Package require wraps github.com/stretchr/testify/require with a smaller,
// stable surface so internal packages depend on one place instead of
// testify directly. Signatures intentionally mirror testify's so call sites
// read the same.
package require

import (
	"testing"

	testifyrequire "github.com/stretchr/testify/require"
)

func NoError(t testing.TB, err error, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.NoError(t, err, msgAndArgs...)
}

func Error(t testing.TB, err error, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Error(t, err, msgAndArgs...)
}

func EqualError(t testing.TB, err error, msg string, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.EqualError(t, err, msg, msgAndArgs...)
}

func Equal(t testing.TB, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Equal(t, expected, actual, msgAndArgs...)
}

func NotEqual(t testing.TB, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.NotEqual(t, expected, actual, msgAndArgs...)
}

func True(t testing.TB, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.True(t, value, msgAndArgs...)
}

func False(t testing.TB, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.False(t, value, msgAndArgs...)
}

func Nil(t testing.TB, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Nil(t, object, msgAndArgs...)
}

func NotNil(t testing.TB, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.NotNil(t, object, msgAndArgs...)
}

func Zero(t testing.TB, i interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Zero(t, i, msgAndArgs...)
}

func Len(t testing.TB, object interface{}, length int, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Len(t, object, length, msgAndArgs...)
}

func Contains(t testing.TB, s, contains interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Contains(t, s, contains, msgAndArgs...)
}

func Panics(t testing.TB, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.Panics(t, f, msgAndArgs...)
}

func ErrorIs(t testing.TB, err, target error, msgAndArgs ...interface{}) {
	t.Helper()
	testifyrequire.ErrorIs(t, err, target, msgAndArgs...)
}
