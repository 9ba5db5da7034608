// Copyright (c) 2026 Library. All rights reserved.

package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zrecovery/library-sub000/internal/library"
)

// Format selects how files are read.
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
)

// Extensions returns the file extensions handled by the format.
func (f Format) Extensions() []string {
	if f == FormatHTML {
		return []string{".html", ".htm"}
	}
	return []string{".txt"}
}

// DefaultPattern matches "Author/Title.txt" and "Author/Series/(2)Title.txt".
const DefaultPattern = `(?:(?P<author>[^/]+)/)?(?:(?P<series>[^/]+)/)?(?:\((?P<order>[0-9.]+)\))?(?P<title>[^/]+)\.[A-Za-z]+$`

// Named groups read from the file name pattern.
const (
	groupAuthor = "author"
	groupSeries = "series"
	groupOrder  = "order"
	groupTitle  = "title"
)

var errNoMatch = errors.New("file name does not match pattern")

// fields are the metadata gathered for one file before it becomes a
// [library.CreateInput].
type fields struct {
	title  string
	author string
	series string
	order  string
	body   string
}

// fromName extracts the named groups of pattern from a slash-separated
// relative path.
func fromName(relPath string, pattern *regexp.Regexp) (fields, error) {
	match := pattern.FindStringSubmatch(relPath)
	if match == nil {
		return fields{}, errNoMatch
	}

	var result fields
	for i, name := range pattern.SubexpNames() {
		value := strings.TrimSpace(match[i])
		switch name {
		case groupAuthor:
			result.author = value
		case groupSeries:
			result.series = value
		case groupOrder:
			result.order = value
		case groupTitle:
			result.title = value
		}
	}
	if result.title == "" {
		result.title = strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	}
	return result, nil
}

// ParseText builds a create input from a plain-text file. Metadata comes
// from the file name, the body from the content.
func ParseText(relPath string, content []byte, pattern *regexp.Regexp) (library.CreateInput, error) {
	meta, err := fromName(relPath, pattern)
	if err != nil {
		return library.CreateInput{}, err
	}
	meta.body = string(bytes.TrimSpace(content))
	return meta.input()
}

// ParseHTML builds a create input from an HTML document. The title comes
// from the first <h1> or <title>, the author and series from <meta> tags,
// the body from <article> or <body> text. Values missing from the document
// fall back to the file name pattern.
func ParseHTML(relPath string, content []byte, pattern *regexp.Regexp) (library.CreateInput, error) {
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return library.CreateInput{}, fmt.Errorf("parse html: %w", err)
	}

	meta, err := fromName(relPath, pattern)
	if err != nil && !errors.Is(err, errNoMatch) {
		return library.CreateInput{}, err
	}

	if heading := strings.TrimSpace(document.Find("h1").First().Text()); heading != "" {
		meta.title = heading
	} else if title := strings.TrimSpace(document.Find("title").First().Text()); title != "" {
		meta.title = title
	}
	meta.author = metaContent(document, groupAuthor, meta.author)
	meta.series = metaContent(document, groupSeries, meta.series)
	meta.order = metaContent(document, "series-order", meta.order)

	container := document.Find("article").First()
	if container.Length() == 0 {
		container = document.Find("body").First()
	}
	container.Find("h1, script, style").Remove()
	meta.body = strings.TrimSpace(container.Text())

	return meta.input()
}

func metaContent(document *goquery.Document, name, fallback string) string {
	value, ok := document.Find(`meta[name="` + name + `"]`).First().Attr("content")
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func (f fields) input() (library.CreateInput, error) {
	if f.author == "" {
		return library.CreateInput{}, errors.New("no author found")
	}

	input := library.CreateInput{
		Title:  f.title,
		Body:   f.body,
		Author: library.AuthorInput{Name: f.author},
	}
	if f.series == "" {
		return input, nil
	}

	input.Chapter = &library.ChapterInput{Title: f.series}
	if f.order != "" {
		order, err := strconv.ParseFloat(f.order, 64)
		if err != nil {
			return library.CreateInput{}, fmt.Errorf("invalid order %q: %w", f.order, err)
		}
		input.Chapter.Order = &order
	}
	return input, nil
}
