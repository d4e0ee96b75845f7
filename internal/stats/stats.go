// Package stats computes aggregate statistics over a materialized blog list.
//
// All functions are pure and safe for concurrent use. Authors are grouped by
// their exact string value; ties resolve to whichever candidate reaches the
// maximum first in input order.
package stats

import (
	"errors"

	"github.com/and161185/bloglist/internal/model"
)

// ErrNoBlogs is returned by the finders when the input is empty.
var ErrNoBlogs = errors.New("no blogs")

// TotalLikes sums likes over blogs.
func TotalLikes(blogs []model.Blog) int64 {
	var total int64
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the first blog with the highest like count.
func FavoriteBlog(blogs []model.Blog) (model.Blog, error) {
	if len(blogs) == 0 {
		return model.Blog{}, ErrNoBlogs
	}
	best := 0
	for i := 1; i < len(blogs); i++ {
		if blogs[i].Likes > blogs[best].Likes {
			best = i
		}
	}
	return blogs[best], nil
}

// MostBlogs returns the author with the most posts.
func MostBlogs(blogs []model.Blog) (model.AuthorBlogs, error) {
	authors, counts := groupBy(blogs, func(model.Blog) int64 { return 1 })
	i, ok := argmax(counts)
	if !ok {
		return model.AuthorBlogs{}, ErrNoBlogs
	}
	return model.AuthorBlogs{Author: authors[i], Blogs: int(counts[i])}, nil
}

// MostLikes returns the author with the highest cumulative likes.
func MostLikes(blogs []model.Blog) (model.AuthorLikes, error) {
	authors, sums := groupBy(blogs, func(b model.Blog) int64 { return b.Likes })
	i, ok := argmax(sums)
	if !ok {
		return model.AuthorLikes{}, ErrNoBlogs
	}
	return model.AuthorLikes{Author: authors[i], Likes: sums[i]}, nil
}

// Summarize computes every statistic in one call. Pointer fields stay nil
// when blogs is empty.
func Summarize(blogs []model.Blog) model.Summary {
	s := model.Summary{TotalLikes: TotalLikes(blogs)}
	if fav, err := FavoriteBlog(blogs); err == nil {
		s.FavoriteBlog = &fav
	}
	if mb, err := MostBlogs(blogs); err == nil {
		s.MostBlogs = &mb
	}
	if ml, err := MostLikes(blogs); err == nil {
		s.MostLikes = &ml
	}
	return s
}

// groupBy folds weight(b) per author, keeping authors in first-occurrence order.
func groupBy(blogs []model.Blog, weight func(model.Blog) int64) ([]string, []int64) {
	idx := make(map[string]int, len(blogs))
	var authors []string
	var totals []int64
	for _, b := range blogs {
		i, seen := idx[b.Author]
		if !seen {
			i = len(authors)
			idx[b.Author] = i
			authors = append(authors, b.Author)
			totals = append(totals, 0)
		}
		totals[i] += weight(b)
	}
	return authors, totals
}

func argmax(v []int64) (int, bool) {
	if len(v) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best, true
}
