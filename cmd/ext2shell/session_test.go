package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionResolve(t *testing.T) {
	cases := []struct {
		name string
		cwd  []string
		arg  string
		want string
	}{
		{"absolute unchanged", []string{"a", "b"}, "/x/y", "/x/y"},
		{"relative joins cwd", []string{"a", "b"}, "x", "/a/b/x"},
		{"dot is a no-op", []string{"a"}, "./x", "/a/x"},
		{"dotdot pops one component", []string{"a", "b"}, "../x", "/a/x"},
		{"dotdot past root stays at root", nil, "../x", "/x"},
		{"empty cwd relative", nil, "x", "/x"},
		{"bare root", []string{"a"}, "/", "/"},
		{"trailing slash ignored", []string{"a"}, "x/", "/a/x"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := &Session{cwd: c.cwd}
			require.Equal(t, c.want, s.Resolve(c.arg))
		})
	}
}

func TestSessionPwd(t *testing.T) {
	require.Equal(t, "/", (&Session{}).Pwd())
	require.Equal(t, "/a/b", (&Session{cwd: []string{"a", "b"}}).Pwd())
}
