// Package pagination computes the previous/next navigation links for listing
// endpoints. Pages are 1-based; links are absolute URLs carrying only the
// page parameter, or nil when there is no page in that direction.
package pagination

import "fmt"

// Links returns the previous and next page URLs for a window over total rows.
// previous exists iff page > 1; next exists iff page*pageSize < total. A page
// past the end of the collection simply has no next link, it is not an error.
func Links(scheme, host, path string, page, pageSize int, total int64) (prev, next *string) {
	if page > 1 {
		u := pageURL(scheme, host, path, page-1)
		prev = &u
	}
	if int64(page)*int64(pageSize) < total {
		u := pageURL(scheme, host, path, page+1)
		next = &u
	}
	return prev, next
}

// ClampPage normalizes a requested page number; anything below 1 becomes 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func pageURL(scheme, host, path string, page int) string {
	return fmt.Sprintf("%s://%s%s?page=%d", scheme, host, path, page)
}
