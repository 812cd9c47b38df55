package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Strategy selects the review-like nodes of a page. Each strategy carries a
// versioned name so a broken extraction can be traced to the rule that ran.
type Strategy interface {
	Name() string
	Select(doc *goquery.Document) *goquery.Selection
}

// TagClass selects Tag elements that have at least one class matching Class.
// A nil Class selects every Tag element. With Fallback set, a page without
// any class match yields every Tag element instead.
type TagClass struct {
	Version  string
	Tag      string
	Class    *regexp.Regexp
	Fallback bool
}

// Name returns the versioned strategy name.
func (s TagClass) Name() string {
	return s.Version
}

// Select applies the tag/class rule.
func (s TagClass) Select(doc *goquery.Document) *goquery.Selection {
	all := doc.Find(s.Tag)
	if s.Class == nil {
		return all
	}

	matched := all.FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return hasMatchingClass(sel.Nodes[0], s.Class)
	})
	if matched.Length() == 0 && s.Fallback {
		return all
	}
	return matched
}

// hasMatchingClass tests each class token of n separately.
func hasMatchingClass(n *html.Node, pattern *regexp.Regexp) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			if pattern.MatchString(class) {
				return true
			}
		}
	}
	return false
}

var commentClass = regexp.MustCompile(`comment`)

var builtin = map[string]Strategy{
	"comment-class/v1": TagClass{Version: "comment-class/v1", Tag: "p", Class: commentClass},
	"comment-class/v2": TagClass{Version: "comment-class/v2", Tag: "p", Class: commentClass, Fallback: true},
	"paragraphs/v1":    TagClass{Version: "paragraphs/v1", Tag: "p"},
}

// Names lists the built-in strategies.
func Names() []string {
	names := make([]string, 0, len(builtin)+1)
	for name := range builtin {
		names = append(names, name)
	}
	names = append(names, "custom/v1")
	sort.Strings(names)
	return names
}

// Lookup resolves a strategy by name. "custom/v1" builds a TagClass from
// tag and classPattern; an empty classPattern selects every tag element.
func Lookup(name, tag, classPattern string) (Strategy, error) {
	if s, ok := builtin[name]; ok {
		return s, nil
	}
	if name != "custom/v1" {
		return nil, fmt.Errorf("unknown extraction strategy %q (known: %s)", name, strings.Join(Names(), ", "))
	}

	if tag == "" {
		return nil, fmt.Errorf("custom/v1 strategy requires a tag")
	}
	s := TagClass{Version: name, Tag: tag}
	if classPattern != "" {
		re, err := regexp.Compile(classPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid class pattern %q: %w", classPattern, err)
		}
		s.Class = re
	}
	return s, nil
}
