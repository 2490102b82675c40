package retriever

import "strings"

// Chunking parameters for seed narratives.
const (
	ChunkSize    = 200
	ChunkOverlap = 50
)

var separators = []string{"\n\n", "\n", " ", ""}

// Split breaks text into chunks of at most size runes. Consecutive chunks
// share up to overlap runes of trailing context. It prefers to cut on
// paragraph, then line, then word boundaries before falling back to runes.
func Split(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	if overlap >= size {
		overlap = size / 2
	}
	return splitRecursive(text, size, overlap, separators)
}

func splitRecursive(text string, size, overlap int, seps []string) []string {
	if runeLen(text) <= size {
		return []string{text}
	}

	sep := seps[len(seps)-1]
	rest := []string{}
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks []string
	var window []string
	windowLen := 0
	fresh := false // window holds pieces not yet emitted
	sepLen := runeLen(sep)

	emit := func() {
		if !fresh {
			return
		}
		if chunk := strings.TrimSpace(strings.Join(window, sep)); chunk != "" {
			chunks = append(chunks, chunk)
		}
		fresh = false
	}
	dropFront := func() {
		windowLen -= runeLen(window[0])
		if len(window) > 1 {
			windowLen -= sepLen
		}
		window = window[1:]
	}

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		n := runeLen(piece)
		if n > size {
			emit()
			window, windowLen = nil, 0
			chunks = append(chunks, splitRecursive(piece, size, overlap, rest)...)
			continue
		}
		if len(window) > 0 && windowLen+sepLen+n > size {
			emit()
			// Carry at most overlap runes into the next chunk.
			for len(window) > 0 && (windowLen > overlap || windowLen+sepLen+n > size) {
				dropFront()
			}
		}
		if len(window) > 0 {
			windowLen += sepLen
		}
		window = append(window, piece)
		windowLen += n
		fresh = true
	}
	emit()
	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}
