package epicore

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseEdgeList reads whitespace-delimited "src dst" integer pairs, one
// per line, skipping the first `skip` lines as a header. When directed
// is false, both (i,j) and (j,i) are inserted; a duplicate edge is
// counted but does not create a multi-edge. Returns a FormatError
// carrying the 1-based line number on a non-integer token.
func ParseEdgeList(r io.Reader, directed bool, skip int) (*Network, error) {
	net := NewNetwork()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line <= skip {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, FormatError("<edgelist>", line, errEdgeListArity)
		}
		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, FormatError("<edgelist>", line, err)
		}
		dst, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, FormatError("<edgelist>", line, err)
		}
		insertEdge(net, AgentID(src), AgentID(dst), directed)
	}
	if err := scanner.Err(); err != nil {
		return nil, IOError("<edgelist>", err)
	}
	return net, nil
}

// ParseEdgeListFile opens path and delegates to ParseEdgeList, wrapping
// open failures as an IOError carrying the path.
func ParseEdgeListFile(path string, directed bool, skip int) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IOError(path, err)
	}
	defer f.Close()
	net, err := ParseEdgeList(f, directed, skip)
	if err != nil {
		return nil, err
	}
	return net, nil
}

var errEdgeListArity = &edgeListArityError{}

type edgeListArityError struct{}

func (*edgeListArityError) Error() string {
	return "expected two whitespace-delimited integer fields"
}

// insertEdge adds a->b (and b->a when undirected), using the edge
// weight as a duplicate-edge counter: a repeat (a,b) pair increments
// the weight rather than creating a multi-edge, per spec.md §6.
func insertEdge(net *Network, a, b AgentID, directed bool) {
	bumpEdge(net, a, b)
	if !directed {
		bumpEdge(net, b, a)
	}
}

func bumpEdge(net *Network, a, b AgentID) {
	if net.edges[a] == nil {
		net.edges[a] = make(map[AgentID]float64)
	}
	net.edges[a][b]++
}
