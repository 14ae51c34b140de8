/*
Copyright The reg-publish-bitrise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package paginate drives cursor paginated listings.

A listing is read one page at a time, starting with an empty cursor and
following each page's Next cursor until it is empty. First stops as soon as
an item is accepted, so pages after the match are never requested.
*/
package paginate

import (
	"context"

	"github.com/pkg/errors"
)

// ErrCursorLoop is returned when a listing hands back a cursor it already
// returned during the same run.
var ErrCursorLoop = errors.New("pagination cursor repeated")

// Page is one page of a listing. An empty Next ends the listing.
type Page[T any] struct {
	Items []T
	Next  string
}

// FetchFunc fetches the page at cursor. The first page has cursor "".
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Observer is told about every page fetched.
type Observer func(cursor string, items int, next string)

// First returns the first item, in page order, for which accept returns true.
// The boolean is false when the listing ends without a match. Errors from
// fetch are returned unchanged.
func First[T any](ctx context.Context, fetch FetchFunc[T], accept func(T) bool, observers ...Observer) (T, bool, error) {
	var zero T
	seen := map[string]bool{}
	cursor := ""
	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return zero, false, err
		}
		for _, o := range observers {
			o(cursor, len(page.Items), page.Next)
		}
		for _, item := range page.Items {
			if accept(item) {
				return item, true, nil
			}
		}
		if page.Next == "" {
			return zero, false, nil
		}
		seen[cursor] = true
		if seen[page.Next] {
			return zero, false, errors.Wrapf(ErrCursorLoop, "cursor %q", page.Next)
		}
		cursor = page.Next
	}
}
