package history

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Janrichter12345/freetables/models"
	"github.com/Janrichter12345/freetables/services/reservation"
)

const (
	// Entries older than this are pruned unless their target time is still
	// in the future.
	retention = 30 * 24 * time.Hour
	// An accepted reservation counts as "current" for this long after
	// acceptance.
	currentWindow = 2 * time.Hour
	// Slot times are rounded to this quantum so retries for the same
	// real-world booking attempt collapse onto one key.
	slotQuantum = 5 * time.Minute

	// Score head start that guarantees an accepted duplicate always beats a
	// non-accepted one for the same slot, whatever their timestamps.
	acceptedBoost int64 = 1_000_000_000_000
)

var flexibleLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

// parseFlexibleTime accepts the formats clients have historically stored for
// the target time: RFC 3339, date-only, dotted European dates, or a unix
// millisecond epoch.
func parseFlexibleTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// basisTimeMs is the entry's reference time: the parsed target time when
// usable, otherwise the creation time.
func basisTimeMs(e Entry) int64 {
	if t, ok := parseFlexibleTime(e.ReservedFor); ok {
		return t.UnixMilli()
	}
	return e.CreatedAt
}

// slotKey groups entries that describe the same real-world booking attempt:
// same restaurant, same 5-minute-rounded time, same seat count. Entries
// without a usable restaurant name fall back to their id.
func slotKey(e Entry) string {
	name := normName(e.RestaurantName)
	if name == "" {
		return e.ID
	}

	seats := ""
	if e.Seats != 0 {
		seats = strconv.Itoa(e.Seats)
	}

	t := basisTimeMs(e)
	if t <= 0 {
		return name + "|unknown|" + seats
	}

	q := slotQuantum.Milliseconds()
	rounded := (t + q/2) / q * q
	return name + "|" + strconv.FormatInt(rounded, 10) + "|" + seats
}

// DedupeBySlot keeps exactly one entry per slot: the accepted one if any
// exists, otherwise the most recent. An eventually-accepted duplicate always
// displays over an earlier pending or no-response attempt for the same slot.
func DedupeBySlot(items []Entry) []Entry {
	type scored struct {
		entry Entry
		score int64
	}
	best := make(map[string]scored)
	var order []string

	for _, e := range items {
		if e.ID == "" {
			continue
		}
		key := slotKey(e)

		score := basisTimeMs(e)
		if e.AcceptedAt > score {
			score = e.AcceptedAt
		}
		if e.Status == models.ReservationAccepted {
			score += acceptedBoost
		}

		cur, seen := best[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || score > cur.score {
			best[key] = scored{entry: e, score: score}
		}
	}

	out := make([]Entry, 0, len(best))
	for _, key := range order {
		out = append(out, best[key].entry)
	}
	return out
}

// MergeAuthoritative overlays the server-polled snapshot on the cached
// entries. Server-supplied status, restaurant name, seats, target time and
// eta always win when present; the acceptance timestamp is filled in the
// first time an entry is seen as accepted.
func MergeAuthoritative(cached []Entry, server []reservation.StatusItem, now time.Time) []Entry {
	byID := make(map[string]reservation.StatusItem, len(server))
	for _, it := range server {
		byID[it.ID] = it
	}

	nowMs := now.UnixMilli()
	out := make([]Entry, 0, len(cached))
	for _, e := range cached {
		if e.ID == "" {
			continue
		}
		if e.CreatedAt == 0 {
			e.CreatedAt = nowMs
		}

		if it, ok := byID[e.ID]; ok {
			if it.Status != "" {
				e.Status = models.ReservationStatus(it.Status)
			}
			if it.RestaurantName != "" {
				e.RestaurantName = it.RestaurantName
			}
			if it.Seats != 0 {
				e.Seats = it.Seats
			}
			if it.ReservedFor != "" {
				e.ReservedFor = it.ReservedFor
			}
			if it.EtaMinutes != 0 {
				e.EtaMinutes = it.EtaMinutes
			}
			if e.Status == models.ReservationAccepted && e.AcceptedAt == 0 {
				if it.RespondedAt != nil {
					e.AcceptedAt = it.RespondedAt.UnixMilli()
				} else {
					e.AcceptedAt = nowMs
				}
			}
		}
		out = append(out, e)
	}
	return out
}

// DropDeclined removes entries the server has confirmed as declined. It runs
// after MergeAuthoritative so a decline is never applied speculatively from
// stale cache data.
func DropDeclined(items []Entry) []Entry {
	out := make([]Entry, 0, len(items))
	for _, e := range items {
		if e.Status == models.ReservationDeclined {
			continue
		}
		out = append(out, e)
	}
	return out
}

// PruneSupersededNoResponse drops no-response entries for a restaurant once
// a newer attempt at that restaurant exists; only the latest attempt tells
// the diner anything useful.
func PruneSupersededNoResponse(items []Entry) []Entry {
	latest := make(map[string]string) // restaurant name -> id of latest entry
	latestAt := make(map[string]int64)
	for _, e := range items {
		name := normName(e.RestaurantName)
		if name == "" {
			continue
		}
		t := basisTimeMs(e)
		if cur, ok := latestAt[name]; !ok || t > cur {
			latest[name] = e.ID
			latestAt[name] = t
		}
	}

	out := make([]Entry, 0, len(items))
	for _, e := range items {
		name := normName(e.RestaurantName)
		if name != "" && e.Status == models.ReservationNoResponse && latest[name] != e.ID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// PruneExpired applies the 30-day retention window. An entry stays when any
// of its times (creation, target, acceptance) is within the window, or when
// its target time is still in the future.
func PruneExpired(items []Entry, now time.Time) []Entry {
	nowMs := now.UnixMilli()
	cutoff := now.Add(-retention).UnixMilli()

	out := make([]Entry, 0, len(items))
	for _, e := range items {
		var reservedForMs int64
		if t, ok := parseFlexibleTime(e.ReservedFor); ok {
			reservedForMs = t.UnixMilli()
		}

		switch {
		case e.CreatedAt >= cutoff,
			reservedForMs != 0 && reservedForMs >= cutoff,
			e.AcceptedAt != 0 && e.AcceptedAt >= cutoff,
			reservedForMs != 0 && reservedForMs > nowMs:
			out = append(out, e)
		}
	}
	return out
}

// Partition splits entries into the current view (today's activity) and the
// past view (accepted reservations grouped by calendar date, newest first).
func Partition(items []Entry, now time.Time) View {
	nowMs := now.UnixMilli()

	var current, older []Entry
	for _, e := range items {
		basis := time.UnixMilli(basisTimeMs(e))
		isToday := sameLocalDay(basis, now)

		if e.Status == models.ReservationAccepted {
			acc := e.AcceptedAt
			if acc == 0 {
				acc = e.CreatedAt
			}
			activeNow := acc != 0 && nowMs-acc < currentWindow.Milliseconds()
			if isToday && activeNow {
				current = append(current, e)
			} else {
				older = append(older, e)
			}
			continue
		}

		if isToday {
			current = append(current, e)
		}
	}

	sort.SliceStable(current, func(i, j int) bool {
		return basisTimeMs(current[i]) < basisTimeMs(current[j])
	})

	groups := make(map[string]*DateGroup)
	var keys []string
	for _, e := range older {
		if e.Status != models.ReservationAccepted {
			continue
		}
		key := time.UnixMilli(basisTimeMs(e)).Format("2006-01-02")
		g, ok := groups[key]
		if !ok {
			g = &DateGroup{Date: key}
			groups[key] = g
			keys = append(keys, key)
		}
		g.Items = append(g.Items, e)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	past := make([]DateGroup, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		sort.SliceStable(g.Items, func(i, j int) bool {
			return basisTimeMs(g.Items[i]) > basisTimeMs(g.Items[j])
		})
		past = append(past, *g)
	}

	return View{Current: current, Past: past}
}

// Unify is the full reconciliation pipeline: overlay the authoritative
// snapshot, collapse duplicates, prune, and partition for display. It is a
// pure function of its inputs. The returned slice is the cleaned history to
// cache for the next poll.
func Unify(cached []Entry, server []reservation.StatusItem, now time.Time) ([]Entry, View) {
	merged := MergeAuthoritative(cached, server, now)
	merged = PruneSupersededNoResponse(merged)
	merged = DedupeBySlot(merged)
	merged = PruneExpired(merged, now)
	merged = DropDeclined(merged)

	sort.SliceStable(merged, func(i, j int) bool {
		return basisTimeMs(merged[i]) > basisTimeMs(merged[j])
	})

	return merged, Partition(merged, now)
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
