package poll

import (
	"context"

	"github.com/sig-0/ratewatch/fetch"
	"github.com/sig-0/ratewatch/storage/types"
)

type (
	doDelegate     func(context.Context, *fetch.Request) (*fetch.Response, error)
	nameDelegate   func() string
	urlDelegate    func() string
	scrapeDelegate func(context.Context) (*types.ExchangeSnapshot, error)
)

type mockCaller struct {
	doFn doDelegate
}

func (m *mockCaller) Do(ctx context.Context, r *fetch.Request) (*fetch.Response, error) {
	if m.doFn != nil {
		return m.doFn(ctx, r)
	}

	return &fetch.Response{StatusCode: 200}, nil
}

type mockScraper struct {
	nameFn   nameDelegate
	urlFn    urlDelegate
	scrapeFn scrapeDelegate
}

func (m *mockScraper) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockScraper) URL() string {
	if m.urlFn != nil {
		return m.urlFn()
	}

	return ""
}

func (m *mockScraper) Scrape(ctx context.Context) (*types.ExchangeSnapshot, error) {
	if m.scrapeFn != nil {
		return m.scrapeFn(ctx)
	}

	return nil, nil
}
