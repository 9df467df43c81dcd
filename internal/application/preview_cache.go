package application

import (
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// previewCache stores recently computed recurring previews to avoid repeated
// expansion and conflict resolution for identical requests while bookings
// remain unchanged. Any booking write invalidates the whole cache.
type previewCache struct {
	now     func() time.Time
	ttl     time.Duration
	entries *lru.Cache[string, previewCacheEntry]
}

type previewCacheEntry struct {
	preview   RecurringPreview
	expiresAt time.Time
}

func newPreviewCache(ttl time.Duration, maxEntries int, now func() time.Time) *previewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	entries, err := lru.New[string, previewCacheEntry](maxEntries)
	if err != nil {
		// lru.New only fails on a non-positive size, which is clamped above.
		panic(err)
	}
	return &previewCache{
		now:     now,
		ttl:     ttl,
		entries: entries,
	}
}

func (c *previewCache) Get(key string) (RecurringPreview, bool) {
	if c == nil {
		return RecurringPreview{}, false
	}
	entry, ok := c.entries.Get(key)
	if !ok {
		return RecurringPreview{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return RecurringPreview{}, false
	}
	return clonePreview(entry.preview), true
}

func (c *previewCache) Store(key string, preview RecurringPreview) {
	if c == nil {
		return
	}
	c.entries.Add(key, previewCacheEntry{
		preview:   clonePreview(preview),
		expiresAt: c.now().Add(c.ttl),
	})
}

func (c *previewCache) Invalidate() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

func clonePreview(preview RecurringPreview) RecurringPreview {
	out := preview
	if len(preview.Instances) > 0 {
		out.Instances = append(preview.Instances[:0:0], preview.Instances...)
	}
	if len(preview.Alternatives) > 0 {
		out.Alternatives = make(map[int][]string, len(preview.Alternatives))
		for index, rooms := range preview.Alternatives {
			out.Alternatives[index] = append(rooms[:0:0], rooms...)
		}
	}
	return out
}

func buildPreviewCacheKey(input RecurringInput, substitutions map[int]string) string {
	builder := strings.Builder{}
	builder.WriteString(input.RoomID)
	builder.WriteString("|")
	builder.WriteString(input.Title)
	builder.WriteString("|")
	builder.WriteString(input.StartDate.UTC().Format(time.RFC3339))
	builder.WriteString("|")
	builder.WriteString(input.Start.String())
	builder.WriteString("-")
	builder.WriteString(input.End.String())
	builder.WriteString("|")
	builder.WriteString(input.Rule.Pattern.String())
	builder.WriteString("/")
	builder.WriteString(strconv.Itoa(input.Rule.Frequency))
	builder.WriteString("/")
	builder.WriteString(strconv.Itoa(input.Rule.Count))
	if input.Rule.Until != nil {
		builder.WriteString("/")
		builder.WriteString(input.Rule.Until.UTC().Format(time.RFC3339))
	}
	for _, weekday := range input.Rule.Weekdays {
		builder.WriteString(",")
		builder.WriteString(strconv.Itoa(int(weekday)))
	}
	builder.WriteString("|")
	builder.WriteString(strconv.Itoa(input.MinCapacity))
	builder.WriteString("|")

	equipment := append(input.RequiredEquipment[:0:0], input.RequiredEquipment...)
	sort.Strings(equipment)
	builder.WriteString(strings.Join(equipment, ","))
	builder.WriteString("|")

	indexes := make([]int, 0, len(substitutions))
	for index := range substitutions {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		builder.WriteString(strconv.Itoa(index))
		builder.WriteString("=")
		builder.WriteString(substitutions[index])
		builder.WriteString(";")
	}
	return builder.String()
}
