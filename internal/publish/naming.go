// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	notebookMarker = ".ipynb"
	htmlMarker     = ".html"
	chapterWord    = "chapter"
	chapterTitle   = "Chapter "
)

// IsChapterDir reports whether a directory name marks a chapter. The match
// is a case-sensitive substring test, so "chapter1" and "old-chapter" match
// while "Chapter1" does not.
func IsChapterDir(name, match string) bool {
	return strings.Contains(name, match)
}

// IsNotebook reports whether name looks like a Jupyter notebook.
func IsNotebook(name string) bool {
	return strings.Contains(name, notebookMarker)
}

// IsHTML reports whether name looks like an HTML page.
func IsHTML(name string) bool {
	return strings.Contains(name, htmlMarker)
}

// ChapterTitle derives the README header from a chapter directory name by
// replacing every "chapter" with "Chapter ". No number parsing is done:
// "chapter1" becomes "Chapter 1" and "chapter_two" becomes "Chapter _two".
func ChapterTitle(dirName string) string {
	return strings.ReplaceAll(dirName, chapterWord, chapterTitle)
}

// LinkText derives README link text from an HTML file name: dashes become
// spaces, ".html" is dropped and each word is title-cased
// ("intro-to-objects.html" becomes "Intro To Objects").
func LinkText(fileName string) string {
	s := strings.ReplaceAll(fileName, "-", " ")
	s = strings.ReplaceAll(s, htmlMarker, "")
	return cases.Title(language.Und).String(s)
}
