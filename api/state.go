package api

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	statusNotStarted = "not_started"
	statusInProgress = "in_progress"
	statusCompleted  = "completed"
)

type lessonProgress struct {
	CourseID         string     `json:"course_id"`
	LessonID         string     `json:"lesson_id"`
	Status           string     `json:"status"`
	LastAccessed     *time.Time `json:"last_accessed,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
}

type courseProgress struct {
	CourseID             string           `json:"courseId"`
	TotalLessons         int              `json:"totalLessons"`
	CompletedLessons     int              `json:"completedLessons"`
	CompletionPercentage int              `json:"completionPercentage"`
	LastAccessedLessonID *string          `json:"lastAccessedLessonId"`
	LastAccessedAt       *time.Time       `json:"lastAccessedAt"`
	Progress             []lessonProgress `json:"progress"`
}

func validStatus(status string) bool {
	switch status {
	case statusNotStarted, statusInProgress, statusCompleted:
		return true
	default:
		return false
	}
}

// touchConversation returns id, or a new id when id is empty, and counts the
// user and assistant messages of the turn against it.
func (s *Server) touchConversation(id string) string {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	s.conversations[id] += 2
	s.mu.Unlock()

	return id
}

func (s *Server) knownConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[id]
	return ok
}

func (s *Server) updateProgress(courseID, lessonID, status string) lessonProgress {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	lessons, ok := s.progress[courseID]
	if !ok {
		lessons = make(map[string]lessonProgress)
		s.progress[courseID] = lessons
	}

	row := lessons[lessonID]
	row.CourseID = courseID
	row.LessonID = lessonID
	row.Status = status
	row.LastAccessed = &now
	if status == statusCompleted {
		row.CompletedAt = &now
	}
	lessons[lessonID] = row

	return row
}

// courseProgress summarizes the lessons recorded for a course. The mock has
// no course catalog, so the total counts recorded lessons only.
func (s *Server) courseProgress(courseID string) courseProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := courseProgress{CourseID: courseID, Progress: []lessonProgress{}}
	for _, row := range s.progress[courseID] {
		out.Progress = append(out.Progress, row)
		if row.Status == statusCompleted {
			out.CompletedLessons++
		}
		if row.LastAccessed != nil && (out.LastAccessedAt == nil || row.LastAccessed.After(*out.LastAccessedAt)) {
			lessonID := row.LessonID
			out.LastAccessedLessonID = &lessonID
			out.LastAccessedAt = row.LastAccessed
		}
	}

	sort.Slice(out.Progress, func(i, j int) bool {
		return out.Progress[i].LessonID < out.Progress[j].LessonID
	})

	out.TotalLessons = len(out.Progress)
	if out.TotalLessons > 0 {
		out.CompletionPercentage = (out.CompletedLessons*100 + out.TotalLessons/2) / out.TotalLessons
	}

	return out
}
