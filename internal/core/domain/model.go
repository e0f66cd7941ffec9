package domain

import "time"

type Message struct {
	ID       int
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

type Action string

const (
	Typing       Action = "typing"
	SendingPhoto Action = "upload_photo"
)

// Item is a single piece of content produced by a content source.
type Item struct {
	Title     string
	ImageURL  string
	Text      string
	Source    string
	Score     int
	Comments  int
	Author    string
	Permalink string
}

// View is what the presentation layer renders for a paginated session.
type View struct {
	Item        Item
	Index       int
	Total       int
	HasNext     bool
	HasPrevious bool
}

type ScheduleConfig struct {
	DestinationID int64
	Selector      string
	Interval      time.Duration
}

// RegistryEntry is a read-only snapshot of a destination's schedule.
type RegistryEntry struct {
	Config       ScheduleConfig
	Active       bool
	Paused       bool
	StartedAt    time.Time
	Delivered    int64
	Failed       int64
	LastDelivery time.Time
}

type NavAction string

const (
	NavNext     NavAction = "next"
	NavPrevious NavAction = "prev"
	NavClose    NavAction = "close"
)

// ButtonPress is an inline keyboard callback.
type ButtonPress struct {
	ID        string
	ChatID    int64
	MessageID int
	UserID    int64
	Username  string
	Data      string
}
