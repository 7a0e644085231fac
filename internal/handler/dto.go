package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/service"
)

const minPasswordLength = 6

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        domain.ID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// AuthorDTO is the resolved author embedded in a post.
type AuthorDTO struct {
	ID    domain.ID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// PostDTO is the JSON representation of a post.
type PostDTO struct {
	ID        domain.ID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"`
	Author    AuthorDTO `json:"author"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

func toPostDTO(p *domain.Post) PostDTO {
	author := AuthorDTO{ID: p.AuthorID}
	if p.Author != nil {
		author.Name = p.Author.Name
		author.Email = p.Author.Email
	}
	return PostDTO{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.ImageURL,
		Author:    author,
		CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toPostDTOs(posts []domain.Post) []PostDTO {
	dtos := make([]PostDTO, len(posts))
	for i := range posts {
		dtos[i] = toPostDTO(&posts[i])
	}
	return dtos
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *registerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" {
		return invalid("name is required")
	}
	if r.Email == "" {
		return invalid("email is required")
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return invalid("email must be a valid address")
	}
	if len(r.Password) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	if len(r.Password) > service.MaxPasswordBytes {
		return invalid("password must be at most %d bytes", service.MaxPasswordBytes)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return invalid("email and password are required")
	}
	return nil
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r *createPostRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return invalid("title is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return invalid("content is required")
	}
	return nil
}

// optionalString distinguishes an absent JSON field from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type updatePostRequest struct {
	Title   optionalString `json:"title"`
	Content optionalString `json:"content"`
	Image   optionalString `json:"image"`
}

func (r *updatePostRequest) Validate() error {
	if r.Title.Set {
		if r.Title.Value == nil || strings.TrimSpace(*r.Title.Value) == "" {
			return invalid("title cannot be empty")
		}
		trimmed := strings.TrimSpace(*r.Title.Value)
		r.Title.Value = &trimmed
	}
	if r.Content.Set && (r.Content.Value == nil || strings.TrimSpace(*r.Content.Value) == "") {
		return invalid("content cannot be empty")
	}
	if r.Image.Set && r.Image.Value != nil {
		return invalid("image must be uploaded as multipart/form-data or set to null")
	}
	return nil
}

// String returns the value, or "" when absent or null.
func (o optionalString) String() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}
