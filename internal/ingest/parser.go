package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one product block parsed from a catalog text file.
type Entry struct {
	Page         int
	Product      string
	Style        string
	Material     string
	Color        string
	Size         string
	Warranty     string
	Delivery     string
	Installation string
	Description  string
	Price        string
}

// pageHeader marks the start of an entry. Blocks run from one header to the
// next (or end of file).
var pageHeader = regexp.MustCompile(`Page (\d+) \| `)

var productPattern = regexp.MustCompile(`(?s)^(.*?) Style:`)

// fieldPatterns delimit each field by the label of the one that follows it in
// the catalog layout. Values may span lines.
var fieldPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"style", regexp.MustCompile(`(?s)Style: (.*?) Material:`)},
	{"material", regexp.MustCompile(`(?s)Material: (.*?) Color:`)},
	{"color", regexp.MustCompile(`(?s)Color: (.*?) (?:Size|Layout Size):`)},
	{"size", regexp.MustCompile(`(?s)(?:Size|Layout Size): (.*?) Warranty:`)},
	{"warranty", regexp.MustCompile(`(?s)Warranty: (.*?) Delivery:`)},
	{"delivery", regexp.MustCompile(`(?s)Delivery: (.*?) Installation:`)},
	{"installation", regexp.MustCompile(`(?s)Installation: (.*?) Description:`)},
	{"description", regexp.MustCompile(`(?s)Description: (.*?) Price:`)},
	{"price", regexp.MustCompile(`(?s)Price: (.*)$`)},
}

// ParseCatalogFile parses a catalog text file into entries. A missing file is
// not an error; it yields no entries, matching the best-effort ingestion of
// partially populated data directories.
func ParseCatalogFile(path string) ([]Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(string(content)), nil
}

// ParseCatalog splits raw catalog text on page headers and parses each block.
// Blocks without a recognizable product name are skipped.
func ParseCatalog(content string) []Entry {
	headers := pageHeader.FindAllStringSubmatchIndex(content, -1)

	entries := make([]Entry, 0, len(headers))
	for i, loc := range headers {
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}

		page, err := strconv.Atoi(content[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		block := strings.TrimSpace(content[loc[1]:end])
		entry, ok := parseBlock(page, block)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

func parseBlock(page int, block string) (Entry, bool) {
	m := productPattern.FindStringSubmatch(block)
	if m == nil {
		return Entry{}, false
	}

	entry := Entry{Page: page, Product: strings.TrimSpace(m[1])}
	for _, fp := range fieldPatterns {
		fm := fp.pattern.FindStringSubmatch(block)
		if fm == nil {
			continue
		}
		value := strings.ReplaceAll(strings.TrimSpace(fm[1]), "\n", " ")

		switch fp.name {
		case "style":
			entry.Style = value
		case "material":
			entry.Material = value
		case "color":
			entry.Color = value
		case "size":
			entry.Size = value
		case "warranty":
			entry.Warranty = value
		case "delivery":
			entry.Delivery = value
		case "installation":
			entry.Installation = value
		case "description":
			entry.Description = value
		case "price":
			entry.Price = value
		}
	}

	return entry, true
}
