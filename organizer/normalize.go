package organizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"msgagent/models"
	"msgagent/utils"
)

var categoryAliases = map[string]models.Category{
	"work":          models.CategoryWork,
	"friend":        models.CategoryFriend,
	"family":        models.CategoryFamily,
	"advertisement": models.CategoryAdvertisement,
	"ad":            models.CategoryAdvertisement,
	"ads":           models.CategoryAdvertisement,
	"广告":            models.CategoryAdvertisement,
}

// NormalizeCategory maps an externally supplied category onto the closed
// set. Unknown values become Friend and are logged; ok reports a clean match.
func NormalizeCategory(raw string) (category models.Category, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if c := models.Category(trimmed); c.Valid() {
		return c, true
	}
	if c, found := categoryAliases[strings.ToLower(trimmed)]; found {
		return c, true
	}
	utils.Log.Warn("Invalid category %q, using %s", raw, models.CategoryFriend)
	return models.CategoryFriend, false
}

// NormalizePriority accepts ints, integral floats and numeric strings in
// [1,5]. Anything else becomes the default priority and is logged.
func NormalizePriority(raw any) (priority models.Priority, ok bool) {
	n, parsed := toInt(raw)
	if parsed && models.Priority(n).Valid() {
		return models.Priority(n), true
	}
	utils.Log.Warn("Invalid priority %v, using %d", raw, models.PriorityDefault)
	return models.PriorityDefault, false
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case models.Priority:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// NormalizeTags trims, drops empties and duplicates, caps at MaxTags and
// falls back to the sentinel.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	if len(tags) == 0 {
		return []string{models.SentinelTag}
	}
	return tags
}

// NormalizeResult repairs an OrganizeResult received from outside the rule
// pipeline so that it satisfies the same invariants.
func NormalizeResult(r models.OrganizeResult) models.OrganizeResult {
	r.Category, _ = NormalizeCategory(string(r.Category))
	r.Priority, _ = NormalizePriority(int(r.Priority))
	r.Tags = NormalizeTags(r.Tags)
	return r
}

// ParseStyle accepts the stored style names and their English aliases.
func ParseStyle(raw string) (models.Style, bool) {
	s := models.Style(strings.TrimSpace(raw))
	for _, known := range models.Styles {
		if s == known {
			return s, true
		}
	}
	switch strings.ToLower(string(s)) {
	case "formal":
		return models.StyleFormal, true
	case "casual":
		return models.StyleCasual, true
	case "minimal":
		return models.StyleMinimal, true
	case "detailed":
		return models.StyleDetailed, true
	case "humorous", "funny":
		return models.StyleHumorous, true
	case "professional":
		return models.StyleProfessional, true
	}
	return models.StyleFormal, false
}

// NormalizeTone fills defaults and maps style and language onto known values.
func NormalizeTone(t models.ToneProfile) models.ToneProfile {
	t = t.WithDefaults()
	if style, ok := ParseStyle(string(t.Style)); ok {
		t.Style = style
	} else {
		utils.Log.Warn("Unknown tone style %q, using %s", t.Style, models.StyleFormal)
		t.Style = models.StyleFormal
	}
	validLength := false
	for _, l := range models.ReplyLengths {
		if t.ReplyLength == l {
			validLength = true
		}
	}
	if !validLength {
		t.ReplyLength = models.LengthShort
	}
	t.Language, _ = utils.NormalizeLanguage(t.Language)
	return t
}
