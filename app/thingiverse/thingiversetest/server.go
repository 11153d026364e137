// Package thingiversetest provides an in-process fake of the Thingiverse API.
package thingiversetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/bow-comb/app/thingiverse"
)

// Collection is a fake collection together with its things.
type Collection struct {
	ID       int64
	Name     string
	Modified string
	Things   []thingiverse.Thing
}

type Server struct {
	*httptest.Server

	Token    string
	PageSize int

	mu          sync.Mutex
	account     string
	collections []Collection
	requests    []string
}

// NewServer starts a fake API serving collections for account. Close it when done.
func NewServer(account, token string, collections []Collection) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		Token:       token,
		PageSize:    2,
		account:     account,
		collections: collections,
	}

	r := gin.New()
	r.Use(s.record, s.authorize)
	r.GET("/users/:account/collections", s.listCollections)
	r.GET("/collections/:id/things", s.listThings)

	s.Server = httptest.NewServer(r)
	return s
}

// SetCollections swaps the served data.
func (s *Server) SetCollections(collections []Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = collections
}

// Requests returns the request URIs served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CollectionURL is the API url advertised for collection id.
func (s *Server) CollectionURL(id int64) string {
	return fmt.Sprintf("%s/collections/%d", s.URL, id)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, c.Request.URL.RequestURI())
	s.mu.Unlock()
	c.Next()
}

func (s *Server) authorize(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) listCollections(c *gin.Context) {
	if c.Param("account") != s.account {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	s.mu.Lock()
	out := make([]thingiverse.Collection, 0, len(s.collections))
	for _, col := range s.collections {
		out = append(out, thingiverse.Collection{
			ID:       col.ID,
			Name:     col.Name,
			URL:      "http://" + c.Request.Host + "/collections/" + strconv.FormatInt(col.ID, 10),
			Modified: col.Modified,
			Count:    len(col.Things),
		})
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, page(out, c.Query("page"), s.PageSize))
}

func (s *Server) listThings(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
		return
	}

	s.mu.Lock()
	var things []thingiverse.Thing
	found := false
	for _, col := range s.collections {
		if col.ID == id {
			things = append(things, col.Things...)
			found = true
		}
	}
	s.mu.Unlock()

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}

	c.JSON(http.StatusOK, page(things, c.Query("page"), s.PageSize))
}

func page[T any](all []T, rawPage string, size int) []T {
	n, err := strconv.Atoi(rawPage)
	if err != nil || n < 1 {
		n = 1
	}

	start := (n - 1) * size
	if start >= len(all) {
		return []T{}
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
