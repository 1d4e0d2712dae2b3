package cli

import (
	"context"

	bookrepo "bookborrow/repository/book"
	borrowrepo "bookborrow/repository/borrow"
	paymentrepo "bookborrow/repository/payment"
	telegramrepo "bookborrow/repository/telegram"
	xenditrepo "bookborrow/repository/xendit"
	booksvc "bookborrow/service/book"
	borrowsvc "bookborrow/service/borrow"
	"bookborrow/service/notify"
	paymentsvc "bookborrow/service/payment"
	"bookborrow/service/sweep"
	"bookborrow/util/database"
)

type deps struct {
	db         *database.DB
	books      booksvc.Service
	borrows    borrowsvc.Service
	payments   paymentsvc.Service
	sweep      sweep.Service
	dispatcher *notify.Dispatcher
}

func openDB(ctx context.Context) (*database.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	})
}

func wire(ctx context.Context) (*deps, error) {
	db, err := openDB(ctx)
	if err != nil {
		return nil, err
	}

	// repos
	br := bookrepo.New(db.Pool)
	rr := borrowrepo.New(db.Pool)
	pr := paymentrepo.New(db.Pool)
	xr := xenditrepo.NewHTTP(xenditrepo.Options{
		APIKey:        cfg.XenditAPIKey,
		CallbackToken: cfg.XenditCallbackToken,
		BaseURL:       cfg.XenditBaseURL,
		Currency:      cfg.Currency,
	})
	tr := telegramrepo.NewHTTP(telegramrepo.Options{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		BaseURL:  cfg.TelegramBaseURL,
	})

	// services
	d := notify.NewDispatcher(tr, log, cfg.NotifyQueue)
	bs := booksvc.New(db, br, log)
	ps := paymentsvc.New(pr, xr, log, paymentsvc.Options{
		SessionTimeout: cfg.SessionTimeout,
		SessionExpiry:  cfg.SessionExpiry,
	})
	ls := borrowsvc.New(db, rr, bs, ps, d, log, nil)

	return &deps{
		db:         db,
		books:      bs,
		borrows:    ls,
		payments:   ps,
		sweep:      sweep.New(ls, d, log),
		dispatcher: d,
	}, nil
}
