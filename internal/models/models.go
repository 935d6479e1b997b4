package models

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the on-disk format for every date field
const DateLayout = "2006-01-02"

// DocumentTypeVideoNotes tags documents generated from a video summary
const DocumentTypeVideoNotes = "video_notes"

// DefaultCategories are always offered when creating a project
var DefaultCategories = []string{"Personal", "Work", "Education", "Health", "Finance", "Other"}

// User is a registered login
type User struct {
	Username     string `json:"-"`
	PasswordHash string `json:"password"`
	CreatedAt    string `json:"created_at"`
}

// Todo is a single task within a project
type Todo struct {
	ID        string `json:"id,omitempty"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
	DateAdded string `json:"date_added"`
}

// Document is a markdown note with an optional attachment
type Document struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	DateCreated string `json:"date_created"`
	Attachment  string `json:"attachment,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Project is the full record stored in project_info.json
type Project struct {
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	CreatedDate string     `json:"created_date"`
	DueDate     string     `json:"due_date,omitempty"`
	Todos       []Todo     `json:"todos"`
	Documents   []Document `json:"documents"`
	Archived    bool       `json:"archived"`
}

// Stats summarizes a project for the manage view
type Stats struct {
	TotalTasks     int
	CompletedTasks int
	Documents      int
}

// NewProject creates an empty project dated now
func NewProject(name, category, dueDate string, now time.Time) *Project {
	return &Project{
		Name:        name,
		Category:    category,
		CreatedDate: now.Format(DateLayout),
		DueDate:     dueDate,
		Todos:       []Todo{},
		Documents:   []Document{},
	}
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewTodoID returns a timestamp id in the "<seconds>.<micros>" form.
// Ids are strictly increasing within the process.
func NewTodoID(now time.Time) string {
	idMu.Lock()
	us := now.UnixMicro()
	if us <= lastID {
		us = lastID + 1
	}
	lastID = us
	idMu.Unlock()

	return fmt.Sprintf("%d.%06d", us/1_000_000, us%1_000_000)
}

// EnsureTodoIDs assigns an id to every todo missing one
func (p *Project) EnsureTodoIDs(now time.Time) {
	for i := range p.Todos {
		if p.Todos[i].ID == "" {
			p.Todos[i].ID = NewTodoID(now)
		}
	}
}

// AddTodo appends an open task and returns it
func (p *Project) AddTodo(task string, now time.Time) Todo {
	t := Todo{
		ID:        NewTodoID(now),
		Task:      task,
		DateAdded: now.Format(DateLayout),
	}
	p.Todos = append(p.Todos, t)
	return t
}

// ToggleTodo flips the completed flag. Returns false if no todo has the id.
func (p *Project) ToggleTodo(id string) bool {
	for i := range p.Todos {
		if p.Todos[i].ID == id {
			p.Todos[i].Completed = !p.Todos[i].Completed
			return true
		}
	}
	return false
}

// RemoveTodo deletes the todo with the given id
func (p *Project) RemoveTodo(id string) bool {
	for i := range p.Todos {
		if p.Todos[i].ID == id {
			p.Todos = append(p.Todos[:i], p.Todos[i+1:]...)
			return true
		}
	}
	return false
}

// ClearCompleted drops every completed todo and returns how many were removed
func (p *Project) ClearCompleted() int {
	kept := p.Todos[:0]
	for _, t := range p.Todos {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(p.Todos) - len(kept)
	p.Todos = kept
	return removed
}

// AddDocument appends a document
func (p *Project) AddDocument(doc Document) {
	p.Documents = append(p.Documents, doc)
}

// RemoveDocument deletes the document at index
func (p *Project) RemoveDocument(index int) bool {
	if index < 0 || index >= len(p.Documents) {
		return false
	}
	p.Documents = append(p.Documents[:index], p.Documents[index+1:]...)
	return true
}

// Stats counts tasks and documents
func (p *Project) Stats() Stats {
	s := Stats{TotalTasks: len(p.Todos), Documents: len(p.Documents)}
	for _, t := range p.Todos {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	return s
}
