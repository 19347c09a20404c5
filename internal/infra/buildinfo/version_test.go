package buildinfo

import (
	"strings"
	"testing"
)

func TestGet_Defaults(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Commit != Commit {
		t.Errorf("Get = %+v", info)
	}
}

func TestString_ContainsVersionAndCommit(t *testing.T) {
	s := String()
	if !strings.Contains(s, Version) || !strings.Contains(s, Commit) {
		t.Errorf("String = %q", s)
	}
}
