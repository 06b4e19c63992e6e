// File: regionfile.go
// Role: reads a JSON description of one or more CFG regions off disk and
// builds the *cfgraph.Graph + jobrunner.Region values restructure.Run
// expects. This is the CLI's only file format; there is no pack library for
// a domain-specific graph schema like this one, so it is read with the
// standard library the way stacktower's own manifest parsers read their
// input files at the command boundary.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cfgforge/restructure/cfgraph"
	"github.com/cfgforge/restructure/jobrunner"
)

type regionFile struct {
	Regions []regionSpec `json:"regions"`
}

type regionSpec struct {
	Name     string      `json:"name"`
	Function string      `json:"function"`
	Entry    int64       `json:"entry"`
	Nodes    []nodeSpec  `json:"nodes"`
	Edges    []edgeSpec  `json:"edges"`
}

type nodeSpec struct {
	ID     int64  `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

type edgeSpec struct {
	Src     int64 `json:"src"`
	Dst     int64 `json:"dst"`
	Labels  []int `json:"labels"`
	Inlined bool  `json:"inlined"`
}

func kindFromString(s string) (cfgraph.Kind, error) {
	switch s {
	case "", "Code":
		return cfgraph.KindCode, nil
	case "Dispatcher":
		return cfgraph.KindDispatcher, nil
	case "ArtificialEntry":
		return cfgraph.KindArtificialEntry, nil
	case "ArtificialExit":
		return cfgraph.KindArtificialExit, nil
	default:
		return 0, fmt.Errorf("regionfile: unsupported node kind %q", s)
	}
}

// loadRegions parses path and builds one jobrunner.Region per entry, in file
// order. File-local node ids are remapped to the cfgraph.NodeID values
// AddNode assigns, since a Graph owns its own id space.
func loadRegions(path string) ([]jobrunner.Region, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regionfile.loadRegions(%s): %w", path, err)
	}

	var file regionFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("regionfile.loadRegions(%s): %w", path, err)
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("regionfile.loadRegions(%s): no regions defined", path)
	}

	regions := make([]jobrunner.Region, 0, len(file.Regions))
	for _, spec := range file.Regions {
		region, err := buildRegion(spec)
		if err != nil {
			return nil, fmt.Errorf("regionfile.loadRegions(%s): region %q: %w", path, spec.Name, err)
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func buildRegion(spec regionSpec) (jobrunner.Region, error) {
	if spec.Name == "" {
		return jobrunner.Region{}, fmt.Errorf("region has no name")
	}

	g := cfgraph.NewGraph(spec.Function, spec.Name)
	ids := make(map[int64]cfgraph.NodeID, len(spec.Nodes))

	for _, n := range spec.Nodes {
		kind, err := kindFromString(n.Kind)
		if err != nil {
			return jobrunner.Region{}, err
		}
		weight := n.Weight
		if weight == 0 {
			weight = 1
		}
		ids[n.ID] = g.AddNode(kind, nil, n.Name, weight)
	}

	for _, e := range spec.Edges {
		src, ok := ids[e.Src]
		if !ok {
			return jobrunner.Region{}, fmt.Errorf("edge references unknown node id %d", e.Src)
		}
		dst, ok := ids[e.Dst]
		if !ok {
			return jobrunner.Region{}, fmt.Errorf("edge references unknown node id %d", e.Dst)
		}
		info := cfgraph.EdgeInfo{Labels: cfgraph.NewCaseLabels(e.Labels...), Inlined: e.Inlined}
		if err := g.AddEdge(src, dst, info); err != nil {
			return jobrunner.Region{}, fmt.Errorf("add edge %d->%d: %w", e.Src, e.Dst, err)
		}
	}

	entry, ok := ids[spec.Entry]
	if !ok {
		return jobrunner.Region{}, fmt.Errorf("entry references unknown node id %d", spec.Entry)
	}
	if err := g.SetEntry(entry); err != nil {
		return jobrunner.Region{}, fmt.Errorf("set entry: %w", err)
	}

	return jobrunner.Region{Name: spec.Name, Graph: g, Entry: entry}, nil
}
