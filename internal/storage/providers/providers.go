package providers

import "github.com/jackc/pgx/v5/pgxpool"

type Providers struct {
	UserProvider     *UserProvider
	TemplateProvider *TemplateProvider
	ResponseProvider *ResponseProvider
}

func New(db *pgxpool.Pool) *Providers {
	return &Providers{
		UserProvider:     NewUserProvider(db),
		TemplateProvider: NewTemplateProvider(db),
		ResponseProvider: NewResponseProvider(db),
	}
}
