package quoteApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"papertrade/config"
	"papertrade/internal/externalApi"
	"papertrade/internal/model"
	"papertrade/utils"

	"github.com/go-resty/resty/v2"
)

// QuoteApi is the client for the external quote provider. The provider
// answers GET /quote?symbol=X with {"symbol", "name", "price"} and
// GET /quotes?symbols=X,Y with a list of the same objects, omitting
// unknown symbols.
type QuoteApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url)
	return &QuoteApi{client: client}
}

func (a *QuoteApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start QuoteApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbol", symbol).
		Get("/quote")

	if err != nil {
		slog.Error("error while dialing QuoteApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.Quote{}, externalApi.ErrNotFound
	}

	quote := model.Quote{}
	err = json.Unmarshal(resp.Body(), &quote)
	if err != nil {
		slog.Error("can't unmarshall response into model.Quote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if quote.Symbol == "" {
		return model.Quote{}, externalApi.ErrNotFound
	}

	slog.Debug("QuoteApi.GetQuote request complete", slog.String("rqID", rqID))

	return quote, nil
}

func (a *QuoteApi) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start QuoteApi.GetQuotes request", slog.String("rqID", rqID), slog.Int("symbols", len(symbols)))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbols", strings.Join(symbols, ",")).
		Get("/quotes")

	if err != nil {
		slog.Error("error while dialing QuoteApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	var quotes []model.Quote
	err = json.Unmarshal(resp.Body(), &quotes)
	if err != nil {
		slog.Error("can't unmarshall response into []model.Quote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	res := make(map[string]model.Quote, len(quotes))
	for _, quote := range quotes {
		res[quote.Symbol] = quote
	}

	slog.Debug("QuoteApi.GetQuotes request complete", slog.String("rqID", rqID))

	return res, nil
}
