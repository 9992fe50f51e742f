package main

import "testing"

func TestParseLoads(t *testing.T) {
	got := parseLoads("shapes=specs/shapes.yaml, specs/points.json,,")
	if len(got) != 2 {
		t.Fatalf("got %#v", got)
	}
	if got["shapes"] != "specs/shapes.yaml" {
		t.Fatalf("got %#v", got)
	}
	if got["points"] != "specs/points.json" {
		t.Fatalf("got %#v", got)
	}
}
