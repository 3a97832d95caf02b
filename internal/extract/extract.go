// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses the model's free-form text output into typed stage
// results. The model's output is not a committed machine-readable contract,
// so every rule is best-effort: a missing section degrades to an empty
// result of the correct shape, never to an error. Rules are anchored: a
// bounded region is located by literal markers first, then an ordinal scan
// runs inside it, so matches cannot bleed across unrelated prose.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Literal markers bounding the stage sections.
const (
	domainsHeading    = "# Top Domains"
	domainsEnd        = "Which domain should we explore further?"
	bulbsHeading      = "# 6: Brightest Bulbs"
	bulbsEnd          = "Which path should we explore further?"
	questionsOpenTag  = "<research_questions>"
	questionsCloseTag = "</research_questions>"
	topQuestionsLabel = "Top Two Most Promising Research Questions:"
)

var (
	domainEntryRe = regexp.MustCompile(`## (\d+)\. Domain: ([\w ]+)`)

	// Ordinal markers opening one entry; entries run to the next marker or
	// the end of the region.
	frameworkMarkerRe = regexp.MustCompile(`\d+\. \*\*`)
	questionMarkerRe  = regexp.MustCompile(`\d+\. `)

	frameworkEntryRe = regexp.MustCompile(`(?s)\A(\d+)\. \*\*(.*?):\*\* (.*)\z`)
	questionEntryRe  = regexp.MustCompile(`(?s)\A(\d+)\. (.*)\z`)
)

// Extract applies the stage's pattern rules to raw and returns the typed
// result. The only error is an out-of-range stage; extraction itself never
// fails.
func Extract(stage int, raw string) (types.StageResult, error) {
	switch stage {
	case types.StageDomains:
		return Domains(raw), nil
	case types.StageBlending:
		return Frameworks(raw), nil
	case types.StageQuestions:
		return Questions(raw), nil
	default:
		return nil, fmt.Errorf("no extraction rules for stage %d", stage)
	}
}

// Domains extracts the stage-1 domain options. The candidate region starts
// at the "Top Domains" heading and ends at the closing prompt question (or
// end of text); inside it every "## N. Domain: name" sub-heading yields one
// option, in document order. Duplicate ordinals are preserved as separate
// entries.
func Domains(raw string) types.DomainSelection {
	result := types.DomainSelection{Content: raw}

	region, ok := boundedRegion(raw, domainsHeading, domainsEnd)
	if !ok {
		return result
	}

	for _, m := range domainEntryRe.FindAllStringSubmatch(region, -1) {
		result.Options = append(result.Options, types.DomainOption{
			ID:   m[1],
			Name: strings.TrimSpace(m[2]),
		})
	}
	return result
}

// Frameworks extracts the stage-2 framework options from the "Brightest
// Bulbs" region. Each entry has the shape "N. **Title:** description" with
// the description running to the next ordinal marker or the region's end.
func Frameworks(raw string) types.FrameworkSelection {
	result := types.FrameworkSelection{Content: raw}

	region, ok := boundedRegion(raw, bulbsHeading, bulbsEnd)
	if !ok {
		return result
	}

	for _, seg := range segments(region, frameworkMarkerRe) {
		m := frameworkEntryRe.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		result.Options = append(result.Options, types.FrameworkOption{
			ID:          m[1],
			Title:       strings.TrimSpace(m[2]),
			Description: strings.TrimSpace(m[3]),
		})
	}
	return result
}

// Questions extracts the stage-3 research questions from the tag-delimited
// block, and independently the best-effort highlighted subset under the
// "Top Two" label. Absence of the label never affects the primary list.
func Questions(raw string) types.ResearchQuestions {
	result := types.ResearchQuestions{Content: raw}

	block, ok := taggedBlock(raw, questionsOpenTag, questionsCloseTag)
	if ok {
		for _, seg := range segments(block, questionMarkerRe) {
			m := questionEntryRe.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			result.Options = append(result.Options, types.Question{
				ID:   m[1],
				Text: strings.TrimSpace(m[2]),
			})
		}
	}

	if i := strings.Index(raw, topQuestionsLabel); i >= 0 {
		top := raw[i+len(topQuestionsLabel):]
		for _, seg := range segments(top, questionMarkerRe) {
			m := questionEntryRe.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			result.TopQuestions = append(result.TopQuestions, strings.TrimSpace(m[2]))
		}
	}

	return result
}

// boundedRegion returns the substring starting at the literal start marker
// and running to the literal end marker (exclusive) or the end of text.
func boundedRegion(text, start, end string) (string, bool) {
	i := strings.Index(text, start)
	if i < 0 {
		return "", false
	}
	region := text[i:]
	if j := strings.Index(region, end); j >= 0 {
		region = region[:j]
	}
	return region, true
}

// taggedBlock returns the text enclosed by the open and close tags. Both
// tags must be present.
func taggedBlock(text, openTag, closeTag string) (string, bool) {
	i := strings.Index(text, openTag)
	if i < 0 {
		return "", false
	}
	rest := text[i+len(openTag):]
	j := strings.Index(rest, closeTag)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// segments slices region at each ordinal marker match, yielding one
// candidate entry per marker in document order. Each segment starts at its
// marker and runs to the next marker or the region's end.
func segments(region string, marker *regexp.Regexp) []string {
	locs := marker.FindAllStringIndex(region, -1)
	if locs == nil {
		return nil
	}
	segs := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(region)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segs = append(segs, region[loc[0]:end])
	}
	return segs
}
