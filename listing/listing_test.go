package listing

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/leadcontact/blogfront/content"
)

func makePosts(n int, tags ...string) []content.Post {
	posts := make([]content.Post, n)
	for i := range posts {
		posts[i] = content.Post{
			Title: fmt.Sprintf("Post %d", i),
			Slug:  fmt.Sprintf("post-%d", i),
			Date:  "2025-01-01",
			Tags:  tags,
		}
	}
	return posts
}

func slugs(posts []content.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func markerStrings(ms []Marker) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

func TestListTwentyThreePosts(t *testing.T) {
	posts := makePosts(23)
	var e Engine

	tests := []struct {
		page      int
		wantFirst int
		wantLen   int
	}{
		{1, 0, 9},
		{2, 9, 9},
		{3, 18, 5},
	}
	for _, tt := range tests {
		res := e.List(posts, "", tt.page)
		if res.TotalPages != 3 {
			t.Fatalf("page %d: TotalPages = %d, want 3", tt.page, res.TotalPages)
		}
		if len(res.Posts) != tt.wantLen {
			t.Fatalf("page %d: len = %d, want %d", tt.page, len(res.Posts), tt.wantLen)
		}
		if res.Posts[0].Slug != posts[tt.wantFirst].Slug {
			t.Errorf("page %d: first = %s, want %s", tt.page, res.Posts[0].Slug, posts[tt.wantFirst].Slug)
		}
	}
}

func TestPagesCoverFilteredSetExactlyOnce(t *testing.T) {
	var e Engine
	for n := 0; n <= 40; n++ {
		posts := makePosts(n)
		first := e.List(posts, "", 1)
		var seen []string
		for p := 1; p <= first.TotalPages; p++ {
			seen = append(seen, slugs(e.List(posts, "", p).Posts)...)
		}
		want := slugs(posts)
		if n == 0 {
			want = nil
		}
		if !reflect.DeepEqual(seen, want) {
			t.Fatalf("n=%d: union of pages = %v, want %v", n, seen, want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ count, want int }{
		{0, 1}, {1, 1}, {9, 1}, {10, 2}, {18, 2}, {19, 3}, {81, 9}, {82, 10},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.count, DefaultPageSize); got != tt.want {
			t.Errorf("TotalPages(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestOutOfRangePageIsEmpty(t *testing.T) {
	res := Engine{}.List(makePosts(5), "", 4)
	if len(res.Posts) != 0 {
		t.Errorf("expected empty slice, got %d posts", len(res.Posts))
	}
	if res.Page != 4 || res.TotalPages != 1 {
		t.Errorf("Page/TotalPages = %d/%d, want 4/1", res.Page, res.TotalPages)
	}
}

func TestHugePageIsEmpty(t *testing.T) {
	var e Engine
	posts := makePosts(23)
	for _, page := range []int{math.MaxInt, 1<<60 + 1, math.MaxInt / DefaultPageSize} {
		res := e.List(posts, "", page)
		if len(res.Posts) != 0 {
			t.Errorf("page %d: expected empty slice, got %d posts", page, len(res.Posts))
		}
		if res.Next() != 3 || res.Prev() != page-1 {
			t.Errorf("page %d: Prev/Next = %d/%d", page, res.Prev(), res.Next())
		}
		if got := markerStrings(res.Markers); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
			t.Errorf("page %d: markers %v", page, got)
		}
	}

	res := e.ListQuery(posts, "", "1152921504606846977")
	if res.Page != 1<<60+1 || len(res.Posts) != 0 {
		t.Errorf("Page = %d with %d posts", res.Page, len(res.Posts))
	}
	res = e.ListQuery(posts, "", "99999999999999999999")
	if res.Page != 1 || len(res.Posts) != DefaultPageSize {
		t.Errorf("overflowing page value: Page = %d with %d posts", res.Page, len(res.Posts))
	}
}

func TestMarkersHugeCurrent(t *testing.T) {
	got := markerStrings(Markers(math.MaxInt, 10))
	if want := []string{"1", "…", "10"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Markers(MaxInt, 10) = %v, want %v", got, want)
	}
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":     1,
		"1":    1,
		"2":    2,
		" 7 ":  7,
		"abc":  1,
		"0":    1,
		"-3":   1,
		"2.5":  1,
		"1e3":  1,
		"9999": 9999,
	}
	for in, want := range tests {
		if got := ParsePage(in); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFilterByTag(t *testing.T) {
	posts := []content.Post{
		{Slug: "a", Tags: []string{"email"}},
		{Slug: "b", Tags: []string{"Phone"}},
		{Slug: "c", Tags: []string{"EMAIL", "phone"}},
		{Slug: "d"},
		{Slug: "e", Tags: []string{"eMail"}},
	}
	got := slugs(Filter(posts, "Email"))
	want := []string{"a", "c", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter(Email) = %v, want %v", got, want)
	}
	if got := Filter(posts, "email"); len(got) != 0 {
		t.Errorf("display tag match must be case-exact, got %v", slugs(got))
	}
	if got := Filter(posts, "Unknown"); len(got) != 0 {
		t.Errorf("unknown tag should match nothing, got %v", slugs(got))
	}
	if got := Filter(posts, ""); len(got) != len(posts) {
		t.Errorf("empty tag should not filter, got %d posts", len(got))
	}
}

func TestUnmatchedTagStillHasOnePage(t *testing.T) {
	res := Engine{}.ListQuery(makePosts(20, "email"), "Nope", "")
	if res.Total != 0 || res.TotalPages != 1 || len(res.Posts) != 0 {
		t.Errorf("got total=%d pages=%d posts=%d", res.Total, res.TotalPages, len(res.Posts))
	}
	if !reflect.DeepEqual(markerStrings(res.Markers), []string{"1"}) {
		t.Errorf("markers = %v", markerStrings(res.Markers))
	}
}

func TestMarkers(t *testing.T) {
	tests := []struct {
		current, total int
		want           []string
	}{
		{1, 1, []string{"1"}},
		{3, 7, []string{"1", "2", "3", "4", "5", "6", "7"}},
		{5, 10, []string{"1", "…", "4", "5", "6", "…", "10"}},
		{1, 10, []string{"1", "2", "…", "10"}},
		{2, 10, []string{"1", "2", "3", "…", "10"}},
		{3, 10, []string{"1", "2", "3", "4", "…", "10"}},
		{4, 10, []string{"1", "…", "3", "4", "5", "…", "10"}},
		{8, 10, []string{"1", "…", "7", "8", "9", "10"}},
		{10, 10, []string{"1", "…", "9", "10"}},
		{50, 10, []string{"1", "…", "10"}},
	}
	for _, tt := range tests {
		got := markerStrings(Markers(tt.current, tt.total))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Markers(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestMarkerInvariants(t *testing.T) {
	for total := 1; total <= 30; total++ {
		for current := 1; current <= total; current++ {
			ms := Markers(current, total)
			if ms[0].Gap || ms[0].Page != 1 {
				t.Fatalf("(%d,%d): first marker %v", current, total, ms[0])
			}
			last := ms[len(ms)-1]
			if last.Gap || last.Page != total {
				t.Fatalf("(%d,%d): last marker %v", current, total, last)
			}
			if total > compactAbove && len(ms) > 7 {
				t.Fatalf("(%d,%d): %d markers", current, total, len(ms))
			}
			gaps, hasCurrent := 0, false
			for _, m := range ms {
				if m.Gap {
					gaps++
				}
				if m.Page == current {
					hasCurrent = true
				}
			}
			if gaps > 2 {
				t.Fatalf("(%d,%d): %d gaps", current, total, gaps)
			}
			if total <= compactAbove && gaps != 0 {
				t.Fatalf("(%d,%d): gaps in a short list", current, total)
			}
			if !hasCurrent {
				t.Fatalf("(%d,%d): current page not shown", current, total)
			}
		}
	}
}

func TestPrevNext(t *testing.T) {
	var e Engine
	posts := makePosts(30)
	first := e.List(posts, "", 1)
	if first.HasPrev() || !first.HasNext() || first.Prev() != 1 || first.Next() != 2 {
		t.Errorf("page 1 prev/next wrong: %+v", first)
	}
	last := e.List(posts, "", 4)
	if !last.HasPrev() || last.HasNext() || last.Prev() != 3 || last.Next() != 4 {
		t.Errorf("last page prev/next wrong: %+v", last)
	}
}

func TestListIsIdempotent(t *testing.T) {
	posts := makePosts(40, "linkedin")
	var e Engine
	a := e.ListQuery(posts, "LinkedIn", "3")
	b := e.ListQuery(posts, "LinkedIn", "3")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different results")
	}
}

func TestCustomPageSize(t *testing.T) {
	res := Engine{PageSize: 4}.List(makePosts(10), "", 3)
	if res.TotalPages != 3 || len(res.Posts) != 2 {
		t.Errorf("TotalPages=%d len=%d, want 3 and 2", res.TotalPages, len(res.Posts))
	}
}
