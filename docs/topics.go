// Package docs embeds the documentation topics of fdash.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// index is the topic listing the others.
const index = "readme"

// GetTopic returns the content of a documentation topic, or of every topic for "*".
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		topics, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(topics...)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of topics concatenated together.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns the sorted names of the topics, the index excluded.
func GetAllTopics() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, f := range files {
		if name := strings.TrimSuffix(f, ".md"); name != index {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics, nil
}

// an index entry looks like "* name: what the topic is about".
var entry = regexp.MustCompile(`^\*\s+([^:\s]+):\s*(.*)$`)

// Index returns the topics listed in the index with their description, in
// the index order.
func Index() ([][2]string, error) {
	content, err := docs.ReadFile(index + ".md")
	if err != nil {
		return nil, err
	}
	var entries [][2]string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := entry.FindStringSubmatch(scanner.Text()); m != nil {
			entries = append(entries, [2]string{m[1], m[2]})
		}
	}
	return entries, scanner.Err()
}
