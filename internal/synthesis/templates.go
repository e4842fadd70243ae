package synthesis

import (
	"fmt"
	"strings"

	"github.com/docmind/backend/internal/domain"
)

func renderExplanation(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "Based on the documents, I couldn't find a clear explanation for your question."
	}

	var b strings.Builder
	b.WriteString("Based on the uploaded documents:\n\n")
	for i, info := range relevant {
		fmt.Fprintf(&b, "%d. %s\n", i+1, info)
	}

	fmt.Fprintf(&b, "\nThis information comes from: %s", strings.Join(sourceNames(chunks), ", "))
	return b.String()
}

func renderProcess(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "I couldn't find specific process information in the documents for your question."
	}

	var b strings.Builder
	b.WriteString("According to the documents, here's the relevant process information:\n\n")
	for i, step := range relevant {
		fmt.Fprintf(&b, "Step %d: %s\n", i+1, step)
	}
	return b.String()
}

func renderList(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "I couldn't find list information relevant to your question in the documents."
	}

	var items []string
	for _, info := range relevant {
		if strings.Contains(info, ",") {
			for _, item := range strings.Split(info, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
		} else {
			items = append(items, info)
		}
	}
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}

	var b strings.Builder
	b.WriteString("From the documents, here are the relevant items:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "• %s\n", item)
	}
	return b.String()
}

var temporalWords = []string{"date", "time", "when", "during", "after", "before", "year", "month", "day"}

func renderTemporal(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "I couldn't find specific date or time information for your question."
	}

	var timed []string
	for _, info := range relevant {
		lower := strings.ToLower(info)
		for _, w := range temporalWords {
			if strings.Contains(lower, w) {
				timed = append(timed, info)
				break
			}
		}
	}
	if len(timed) == 0 {
		timed = relevant
	}

	var b strings.Builder
	b.WriteString("Regarding timing information from the documents:\n\n")
	for _, info := range timed {
		fmt.Fprintf(&b, "• %s\n", info)
	}
	return b.String()
}

func renderLocation(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "I couldn't find specific location information for your question."
	}

	var b strings.Builder
	b.WriteString("Regarding location information from the documents:\n\n")
	for _, info := range relevant {
		fmt.Fprintf(&b, "• %s\n", info)
	}
	return b.String()
}

func renderCausal(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "I couldn't find specific reasoning or causal information for your question."
	}

	var b strings.Builder
	b.WriteString("Based on the information in the documents:\n\n")
	for _, info := range relevant {
		fmt.Fprintf(&b, "• %s\n", info)
	}
	b.WriteString("\nThis appears to be the reasoning or explanation provided in the source material.")
	return b.String()
}

func renderGeneral(relevant []string, chunks []domain.RetrievedChunk) string {
	if len(relevant) == 0 {
		return "I found some information in the documents, but it may not directly answer your question."
	}

	var b strings.Builder
	b.WriteString("From the uploaded documents, here's the relevant information I found:\n\n")
	for _, info := range relevant {
		fmt.Fprintf(&b, "• %s\n", info)
	}
	b.WriteString("\nIf this doesn't fully answer your question, please try rephrasing it or asking about specific aspects mentioned in the documents.")
	return b.String()
}

// sourceNames deduplicates chunk source files preserving first-seen order.
func sourceNames(chunks []domain.RetrievedChunk) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, chunk := range chunks {
		name := chunk.SourceFile
		if name == "" {
			name = "Unknown"
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
