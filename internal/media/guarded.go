package media

import (
	"context"

	"github.com/listen-stream/music-svc/pkg/breaker"
)

// guardedUploader short-circuits uploads while the media host keeps failing.
type guardedUploader struct {
	next    Uploader
	breaker *breaker.Breaker
}

// Guarded wraps next with b. Calls rejected by an open breaker return an
// error matching breaker.ErrOpen.
func Guarded(next Uploader, b *breaker.Breaker) Uploader {
	return &guardedUploader{next: next, breaker: b}
}

func (g *guardedUploader) Upload(ctx context.Context, filePath, folder string) (*Result, error) {
	var res *Result
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = g.next.Upload(ctx, filePath, folder)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
