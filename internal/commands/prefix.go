package commands

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// splitCommand strips the prefix and returns the lowercased command name and
// the raw text after it.
func splitCommand(content, prefix string) (string, string, bool) {
	if prefix == "" {
		return "", "", false
	}
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	name, rest := nextWord(strings.TrimPrefix(content, prefix))
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(rest), true
}

// bindOptions maps words onto declared options in order. The last declared
// option takes the rest of the line verbatim, so line breaks and spacing in
// free text like a report survive.
func bindOptions(declared []*discordgo.ApplicationCommandOption, rest string) map[string]string {
	options := make(map[string]string, len(declared))
	for i, opt := range declared {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		if i == len(declared)-1 {
			options[opt.Name] = strings.TrimRightFunc(rest, unicode.IsSpace)
			break
		}
		var word string
		word, rest = nextWord(rest)
		options[opt.Name] = word
	}
	return options
}

func nextWord(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}
