// Package posts serves the markdown writings kept in the posts directory.
package posts

import (
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/russross/blackfriday"

	"gogofolio/modules/filemanager"
	"gogofolio/modules/metaparser"
)

const Ext = ".md"

var (
	ErrInvalidSlug = errors.New("invalid slug")
	ErrNotFound    = errors.New("post not found")
	// ErrBrokenPost marks a post List skipped because it could not be read
	// or parsed.
	ErrBrokenPost = errors.New("broken post")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Post is a parsed markdown document.
type Post struct {
	Slug        string
	Title       string
	Description string
	Tags        []string
	Date        time.Time
	Draft       bool
	Markdown    []byte
	HTML        template.HTML
}

// HasTag reports whether the post carries tag, ignoring case.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

type Store struct {
	files *filemanager.FileManager
}

func NewStore(files *filemanager.FileManager) *Store {
	return &Store{files: files}
}

// ValidSlug reports whether slug names a post file without escaping the
// posts directory.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// SlugFromPath returns the slug for a post file name, or false when name is
// not a post.
func SlugFromPath(name string) (string, bool) {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	slug, ok := strings.CutSuffix(base, Ext)
	if !ok || !ValidSlug(slug) {
		return "", false
	}
	return slug, true
}

// Get returns the raw markdown of a post.
func (s *Store) Get(slug string) ([]byte, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	data, err := s.files.GetContent(slug + Ext)
	if errors.Is(err, filemanager.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("reading post %s: %w", slug, err)
	}
	return data, nil
}

// Post returns the parsed post with its body rendered to HTML.
func (s *Store) Post(slug string) (*Post, error) {
	data, err := s.Get(slug)
	if err != nil {
		return nil, err
	}
	return Parse(slug, data)
}

// Parse splits the front matter off a markdown document and renders the body.
func Parse(slug string, data []byte) (*Post, error) {
	meta, body, err := metaparser.SplitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", slug, err)
	}

	title := meta.Title
	if title == "" {
		title = slug
	}

	return &Post{
		Slug:        slug,
		Title:       title,
		Description: meta.Description,
		Tags:        meta.Tags,
		Date:        meta.Date,
		Draft:       meta.Draft,
		Markdown:    body,
		HTML:        template.HTML(blackfriday.MarkdownCommon(body)),
	}, nil
}

// List returns every published post, newest first. Posts that fail to parse
// are left out and reported together in an error matching ErrBrokenPost,
// alongside the posts that did parse.
func (s *Store) List() ([]*Post, error) {
	names, err := s.files.List(".", Ext)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	var broken []error
	posts := make([]*Post, 0, len(names))
	for _, name := range names {
		slug, ok := SlugFromPath(name)
		if !ok {
			continue
		}
		post, err := s.Post(slug)
		if err != nil {
			broken = append(broken, fmt.Errorf("%w: %w", ErrBrokenPost, err))
			continue
		}
		if post.Draft {
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, errors.Join(broken...)
}

// Invalidate forgets the cached content of one post.
func (s *Store) Invalidate(slug string) {
	s.files.Invalidate(slug + Ext)
}

// InvalidatePath forgets the post stored at a file path, ignoring files that
// are not posts.
func (s *Store) InvalidatePath(path string) bool {
	slug, ok := SlugFromPath(path)
	if ok {
		s.Invalidate(slug)
	}
	return ok
}

func (s *Store) Reset() {
	s.files.Reset()
}
