package storage

import (
	"fmt"
	"strings"
)

// Canonical key layout shared by both tiers. Every artifact belonging to a
// document hangs off its storage key.
func PDFKey(storageKey string) string {
	return fmt.Sprintf("pdfs/%s/original.pdf", storageKey)
}

func MetadataKey(storageKey string) string {
	return fmt.Sprintf("pdfs/%s/metadata.json", storageKey)
}

func ImageKey(storageKey string, page int) string {
	return fmt.Sprintf("images/%s/page_%d.jpg", storageKey, page)
}

func TextKey(storageKey string, page int) string {
	return fmt.Sprintf("text/%s/page_%d.md", storageKey, page)
}

func AudioKey(storageKey string, page int) string {
	return fmt.Sprintf("audio/%s/page_%d.mp3", storageKey, page)
}

func QuizKey(storageKey string) string {
	return fmt.Sprintf("quiz/%s/quiz.json", storageKey)
}

// ImagePrefix is the listing prefix for a document's page images.
func ImagePrefix(storageKey string) string {
	return fmt.Sprintf("images/%s/", storageKey)
}

// CatalogKey is where the sqlite catalog file is replicated remotely.
const CatalogKey = "database/catalog.db"

// Legacy local layouts predate the unified namespace. Older trees stored
// artifacts under uploads/<key>/<kind>_files/ with several filename
// conventions, so local lookups probe each candidate in order.
func LegacyImageKeys(storageKey string, page int) []string {
	return []string{
		fmt.Sprintf("%s/image_files/%s_page_%d.jpg", storageKey, storageKey, page),
		fmt.Sprintf("%s/image_files/page_%d.jpg", storageKey, page),
	}
}

func LegacyTextKeys(storageKey string, page int) []string {
	return []string{
		fmt.Sprintf("%s/text_files/%s_page_%d.md", storageKey, storageKey, page),
		fmt.Sprintf("%s/text_files/page_%d.md", storageKey, page),
	}
}

func LegacyAudioKeys(storageKey string, page int) []string {
	keys := []string{
		fmt.Sprintf("%s/audio_files/%s_page_%d.mp3", storageKey, storageKey, page),
		fmt.Sprintf("%s/audio_files/page_%d.mp3", storageKey, page),
	}
	// Some very old trees named audio files after the key's leading segment.
	if base, _, ok := strings.Cut(storageKey, "_"); ok && base != storageKey {
		keys = append(keys, fmt.Sprintf("%s/audio_files/%s_page_%d.mp3", storageKey, base, page))
	}
	return keys
}

// ImageCandidates lists every key a page image may live under in the local
// tier, canonical layout first.
func ImageCandidates(storageKey string, page int) []string {
	return append([]string{ImageKey(storageKey, page)}, LegacyImageKeys(storageKey, page)...)
}

func TextCandidates(storageKey string, page int) []string {
	return append([]string{TextKey(storageKey, page)}, LegacyTextKeys(storageKey, page)...)
}

func AudioCandidates(storageKey string, page int) []string {
	return append([]string{AudioKey(storageKey, page)}, LegacyAudioKeys(storageKey, page)...)
}
