package frontmatter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseYAML(t *testing.T) {
	raw := []byte(`---
title: My First Post
draft: false
weight: 10
date: 2024-05-01
# a comment
tags: [go, web, tooling]
author:
  name: Amy
  email: amy@example.com
links:
  - one
  - two
empty: null
ratio: 1.5
---
# Heading

Body text.
`)

	metadata, body, err := Parse("posts/first.md", raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := metadata["title"]; got != "My First Post" {
		t.Errorf("title = %v", got)
	}
	if got := metadata["draft"]; got != false {
		t.Errorf("draft = %v", got)
	}
	if got := metadata["weight"]; got != 10 {
		t.Errorf("weight = %v (%T)", got, got)
	}
	if got := metadata["ratio"]; got != 1.5 {
		t.Errorf("ratio = %v", got)
	}
	if got := metadata["empty"]; got != nil {
		t.Errorf("empty = %v, want nil", got)
	}

	date, ok := metadata["date"].(time.Time)
	if !ok {
		t.Fatalf("date is %T, want time.Time", metadata["date"])
	}
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("date = %v, want UTC midnight %v", date, want)
	}

	tags, ok := metadata["tags"].([]any)
	if !ok || len(tags) != 3 || tags[0] != "go" {
		t.Errorf("tags = %v", metadata["tags"])
	}

	author, ok := metadata["author"].(map[string]any)
	if !ok || author["name"] != "Amy" {
		t.Errorf("author = %v", metadata["author"])
	}

	links, ok := metadata["links"].([]any)
	if !ok || len(links) != 2 || links[1] != "two" {
		t.Errorf("links = %v", metadata["links"])
	}

	if !strings.HasPrefix(string(body), "# Heading") {
		t.Errorf("body starts with %q", string(body[:min(20, len(body))]))
	}
}

func TestParseTOML(t *testing.T) {
	raw := []byte("+++\ntitle = \"TOML Post\"\ndraft = true\n+++\nbody\n")

	metadata, body, err := Parse("a.md", raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if metadata["title"] != "TOML Post" {
		t.Errorf("title = %v", metadata["title"])
	}
	if metadata["draft"] != true {
		t.Errorf("draft = %v", metadata["draft"])
	}
	if string(body) != "body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	raw := []byte("# Just a heading\n")
	metadata, body, err := Parse("a.md", raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if metadata != nil {
		t.Errorf("metadata = %v, want nil", metadata)
	}
	if string(body) != string(raw) {
		t.Errorf("body = %q, want the original content", body)
	}
}

func TestParseUnclosedDelimiter(t *testing.T) {
	raw := []byte("---\ntitle: Broken\n")
	_, _, err := Parse("posts/broken.md", raw)
	if err == nil {
		t.Fatal("Parse() of an unclosed block should fail")
	}
	var fmErr *Error
	if !errors.As(err, &fmErr) {
		t.Fatalf("error is %T, want *frontmatter.Error", err)
	}
	if fmErr.Path != "posts/broken.md" {
		t.Errorf("Error.Path = %q", fmErr.Path)
	}
	if fmErr.Line == 0 {
		t.Error("Error.Line should be set")
	}
}

func TestParseDelimiterWithTrailingText(t *testing.T) {
	raw := []byte("---dashes are part of the body\nmore\n")
	metadata, body, err := Parse("a.md", raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if metadata != nil {
		t.Errorf("metadata = %v, want nil", metadata)
	}
	if string(body) != string(raw) {
		t.Errorf("body = %q", body)
	}
}

func TestParseEmptyBlock(t *testing.T) {
	raw := []byte("---\n---\nbody\n")
	metadata, body, err := Parse("a.md", raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if metadata == nil || len(metadata) != 0 {
		t.Errorf("metadata = %v, want empty map", metadata)
	}
	if string(body) != "body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestStringifyRoundTrip(t *testing.T) {
	original := map[string]any{
		"title":  "Round Trip",
		"draft":  true,
		"weight": 7,
		"ratio":  2.5,
		"date":   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		"tags":   []any{"go", "yaml"},
	}

	encoded, err := Stringify(original)
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}

	parsed, body, err := Parse("round.md", encoded)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(body) != 0 {
		t.Errorf("body = %q, want empty", body)
	}

	for _, key := range []string{"title", "draft", "weight", "ratio"} {
		if !reflect.DeepEqual(parsed[key], original[key]) {
			t.Errorf("%s = %#v, want %#v", key, parsed[key], original[key])
		}
	}
	gotDate, ok := parsed["date"].(time.Time)
	if !ok || !gotDate.Equal(original["date"].(time.Time)) {
		t.Errorf("date = %#v, want %v", parsed["date"], original["date"])
	}
	if !reflect.DeepEqual(parsed["tags"], original["tags"]) {
		t.Errorf("tags = %#v", parsed["tags"])
	}
}
