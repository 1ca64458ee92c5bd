package service

import (
	"html"
	"log"
	"strings"

	"anoa.com/mentorhub/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

// SearchService keeps the forum content searchable. Indexing failures are
// logged by callers, never surfaced to the end user.
type SearchService interface {
	IndexThread(thread *entity.ForumThread) error
	IndexReply(reply *entity.ForumReply) error
	DeleteThread(id string) error
	DeleteReply(id string) error
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []any{"category_id", "status"}
	if _, err := s.client.Index("threads").UpdateFilterableAttributes(&filterableAttrs); err != nil {
		log.Printf("Failed to update threads filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "hot_score"}
	if _, err := s.client.Index("threads").UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update threads sortable attributes: %v", err)
	}

	replyFilterable := []any{"thread_id"}
	if _, err := s.client.Index("replies").UpdateFilterableAttributes(&replyFilterable); err != nil {
		log.Printf("Failed to update replies filterable attributes: %v", err)
	}

	replySortable := []string{"created_at"}
	if _, err := s.client.Index("replies").UpdateSortableAttributes(&replySortable); err != nil {
		log.Printf("Failed to update replies sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type threadDoc struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     string     `json:"status"`
	CategoryID string     `json:"category_id"`
	HotScore   float64    `json:"hot_score"`
	CreatedAt  int64      `json:"created_at"`
	Author     authorDoc  `json:"author"`
}

type replyDoc struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	ThreadID  string    `json:"thread_id"`
	CreatedAt int64     `json:"created_at"`
	Author    authorDoc `json:"author"`
}

type authorDoc struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// cleanContentForIndex strips markup so search matches plain text only.
func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexThread(thread *entity.ForumThread) error {
	doc := threadDoc{
		ID:        thread.ID.String(),
		Title:     thread.Title,
		Content:   s.cleanContentForIndex(thread.Content),
		Status:    string(thread.Status),
		HotScore:  thread.HotScore,
		CreatedAt: thread.CreatedAt.Unix(),
		Author: authorDoc{
			Username:  thread.User.Username,
			AvatarURL: stringOrEmpty(thread.User.AvatarURL),
		},
	}
	if thread.CategoryID != nil {
		doc.CategoryID = thread.CategoryID.String()
	}

	task, err := s.client.Index("threads").AddDocuments([]threadDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed thread %s, task id: %d", thread.ID, task.TaskUID)
	return nil
}

func (s *searchService) IndexReply(reply *entity.ForumReply) error {
	doc := replyDoc{
		ID:        reply.ID.String(),
		Content:   s.cleanContentForIndex(reply.Content),
		ThreadID:  reply.ThreadID.String(),
		CreatedAt: reply.CreatedAt.Unix(),
		Author: authorDoc{
			Username:  reply.User.Username,
			AvatarURL: stringOrEmpty(reply.User.AvatarURL),
		},
	}

	task, err := s.client.Index("replies").AddDocuments([]replyDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed reply %s, task id: %d", reply.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeleteThread(id string) error {
	_, err := s.client.Index("threads").DeleteDocument(id)
	return err
}

func (s *searchService) DeleteReply(id string) error {
	_, err := s.client.Index("replies").DeleteDocument(id)
	return err
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
