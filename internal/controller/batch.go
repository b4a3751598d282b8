package controller

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/todos/internal/api"
)

// deleteAll issues one delete per id and waits for every call to settle.
// Call failures are recorded per id and never stop the others; only a
// broken worker fails the batch as a whole.
func deleteAll(ctx context.Context, client api.Collection, ids []int) batchDeletedMsg {
	results := make([]error, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("delete %d: panic: %v", id, r)
				}
			}()
			results[i] = client.Delete(ctx, id)
			return nil
		})
	}

	msg := batchDeletedMsg{targeted: ids}
	if err := g.Wait(); err != nil {
		msg.err = err
		return msg
	}
	var causes []error
	for i, err := range results {
		if err != nil {
			msg.failed = append(msg.failed, ids[i])
			causes = append(causes, err)
		}
	}
	msg.causes = errors.Join(causes...)
	return msg
}
