package epicore

import "testing"

func TestNewVirusDefRequiresInitPost(t *testing.T) {
	if _, err := NewVirusDef("flu", noTransition, 1, 2); err == nil {
		t.Error("expected ConfigError for missing init state")
	}
	if _, err := NewVirusDef("flu", 1, noTransition, 2); err == nil {
		t.Error("expected ConfigError for missing post state")
	}
	v, err := NewVirusDef("flu", 1, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Init != 1 || v.Post != 1 || v.Rm != 2 {
		t.Errorf("state trio = (%d,%d,%d), want (1,1,2)", v.Init, v.Post, v.Rm)
	}
	if v.QInit != 2 || v.QPost != 0 || v.QRm != -2 {
		t.Errorf("default queue deltas = (%d,%d,%d), want (2,0,-2)", v.QInit, v.QPost, v.QRm)
	}
}

func TestVirusInstanceIdentity(t *testing.T) {
	a := newVirusInstance(VirusID(1), AgentID(4))
	b := newVirusInstance(VirusID(1), AgentID(4))
	if !a.alive {
		t.Error("new virus instance should start alive")
	}
	if a.uid == b.uid {
		t.Error("two independently created instances must not share a uid")
	}
}
