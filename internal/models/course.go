package models

import "time"

type Course struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	CreatedBy   string     `json:"created_by"`
	PosterID    string     `json:"poster_id,omitempty"`
	PosterURL   string     `json:"poster_url,omitempty"`
	Views       int        `json:"views"`
	NumOfVideos int        `json:"num_of_videos"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Lecture struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoID     string    `json:"video_id,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
