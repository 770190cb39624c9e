package metaparser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	doc := []byte(`+++
title = "How to live"
tags = ["lifestyle"]
date = 2020-01-15
+++

just do it
`)

	meta, body, err := SplitFrontMatter(doc)
	require.NoError(t, err)
	assert.Equal(t, "How to live", meta.Title)
	assert.Equal(t, []string{"lifestyle"}, meta.Tags)
	assert.Equal(t, 2020, meta.Date.Year())
	assert.Equal(t, time.January, meta.Date.Month())
	assert.Equal(t, "just do it\n", string(body))
}

func TestSplitFrontMatterWithoutHeader(t *testing.T) {
	t.Parallel()

	doc := []byte("# Title\n\nbody\n")
	meta, body, err := SplitFrontMatter(doc)
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Equal(t, doc, body)
}

func TestSplitFrontMatterErrors(t *testing.T) {
	t.Parallel()

	_, _, err := SplitFrontMatter([]byte("+++\ntitle = \"x\"\n"))
	assert.ErrorContains(t, err, "missing closing")

	_, _, err = SplitFrontMatter([]byte("+++\ntitle = \n+++\n"))
	assert.Error(t, err)
}
