package models

import "time"

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type Category struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Genre struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int32     `json:"year"`
	Description *string   `json:"description"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`
	Rating      *float64  `json:"rating"` // mean review score, nil until the first review
}

type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int32     `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

type User struct {
	ID                   int64     `json:"-"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	Bio                  string    `json:"bio"`
	Role                 string    `json:"role"`
	ConfirmationCodeHash string    `json:"-"`
	CreatedAt            time.Time `json:"-"`
}

// AnonymousUser marks an unauthenticated request in the request context.
var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser || u == nil
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
