package models

import "time"

// groupGap is the largest silence between two consecutive messages that still keeps them in the
// same visual group.
const groupGap = 5 * time.Minute

// MessageGroup is a maximal run of consecutive messages eligible to render together without a
// sender, time, or date break. DateDivider reports whether the presentation layer should show a
// date marker before the group.
type MessageGroup struct {
	Messages    []Message
	DateDivider bool
}

// GroupMessages partitions an ordered message list into render groups. A message opens a new group
// when it is the first of the list, when its sender differs from the previous message, when more
// than five minutes passed since the previous message, or when the local calendar day changed.
// Concatenating the groups' messages reproduces the input list exactly.
func GroupMessages(messages []Message) []MessageGroup {
	var groups []MessageGroup
	for i, msg := range messages {
		if i == 0 {
			groups = append(groups, MessageGroup{Messages: []Message{msg}})
			continue
		}
		prev := messages[i-1]
		if msg.Sender != prev.Sender ||
			msg.Timestamp.Sub(prev.Timestamp) > groupGap ||
			!sameDay(msg.Timestamp, prev.Timestamp) {
			groups = append(groups, MessageGroup{Messages: []Message{msg}})
			continue
		}
		groups[len(groups)-1].Messages = append(groups[len(groups)-1].Messages, msg)
	}

	for i := range groups {
		if i == 0 {
			groups[i].DateDivider = true
			continue
		}
		groups[i].DateDivider = !sameDay(groups[i].Messages[0].Timestamp, groups[i-1].Messages[0].Timestamp)
	}
	return groups
}

// FormatDividerDate renders the label shown on a date divider relative to now: "Today",
// "Yesterday", or a short date that includes the year only when it differs from the current one.
func FormatDividerDate(t, now time.Time) string {
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	case t.Year() != now.Year():
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("Jan 2")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
