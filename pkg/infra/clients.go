package infra

import (
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/repository/memory"
)

// Clients bundles the external dependencies of the use cases. BigQuery and
// Storage are optional; nil disables the export they serve.
type Clients struct {
	github     interfaces.GitHub
	taskAPI    interfaces.TaskAPI
	repository interfaces.DigestRepository
	bqClient   interfaces.BigQuery
	storage    interfaces.Storage
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		repository: memory.New(),
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitHub() interfaces.GitHub {
	return x.github
}
func (x *Clients) TaskAPI() interfaces.TaskAPI {
	return x.taskAPI
}
func (x *Clients) Repository() interfaces.DigestRepository {
	return x.repository
}
func (x *Clients) BigQuery() interfaces.BigQuery {
	return x.bqClient
}
func (x *Clients) Storage() interfaces.Storage {
	return x.storage
}

func WithGitHub(client interfaces.GitHub) Option {
	return func(x *Clients) {
		x.github = client
	}
}

func WithTaskAPI(client interfaces.TaskAPI) Option {
	return func(x *Clients) {
		x.taskAPI = client
	}
}

func WithRepository(repo interfaces.DigestRepository) Option {
	return func(x *Clients) {
		x.repository = repo
	}
}

func WithBigQuery(client interfaces.BigQuery) Option {
	return func(x *Clients) {
		x.bqClient = client
	}
}

func WithStorage(client interfaces.Storage) Option {
	return func(x *Clients) {
		x.storage = client
	}
}
