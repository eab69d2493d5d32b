package epicore

import (
	"strings"
	"testing"
)

func TestParseEdgeList_Undirected(t *testing.T) {
	r := strings.NewReader("0 1\n1 2\n2 3\n")
	net, err := ParseEdgeList(r, false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !net.ConnectionExists(0, 1) || !net.ConnectionExists(1, 0) {
		t.Error("undirected parse should create edges in both directions")
	}
	if net.Size() != 4 {
		t.Errorf("Size() = %d, want 4", net.Size())
	}
}

func TestParseEdgeList_Directed(t *testing.T) {
	r := strings.NewReader("0 1\n")
	net, err := ParseEdgeList(r, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !net.ConnectionExists(0, 1) {
		t.Error("expected the forward edge")
	}
	if net.ConnectionExists(1, 0) {
		t.Error("a directed parse must not create the reverse edge")
	}
}

func TestParseEdgeList_SkipHeader(t *testing.T) {
	r := strings.NewReader("src dst\n0 1\n")
	net, err := ParseEdgeList(r, true, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !net.ConnectionExists(0, 1) {
		t.Error("expected the edge after the skipped header line")
	}
}

func TestParseEdgeList_DuplicateBumpsWeight(t *testing.T) {
	r := strings.NewReader("0 1\n0 1\n")
	net, err := ParseEdgeList(r, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := net.Weight(0, 1); got != 2 {
		t.Errorf("Weight(0,1) = %f, want 2 after a duplicate edge", got)
	}
}

func TestParseEdgeList_MalformedLine(t *testing.T) {
	r := strings.NewReader("0 1\nnotanumber 2\n")
	if _, err := ParseEdgeList(r, true, 0); err == nil {
		t.Error("expected a FormatError on a non-integer token")
	}
}

func TestParseEdgeList_TooFewFields(t *testing.T) {
	r := strings.NewReader("0\n")
	if _, err := ParseEdgeList(r, true, 0); err == nil {
		t.Error("expected a FormatError for a line with fewer than 2 fields")
	}
}
