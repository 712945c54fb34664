package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/newswire/backend/internal/models"
	"github.com/newswire/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for handler tests.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]models.User)}
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) findFirst(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if u := r.users[id]; match(u) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetUserByLogin(login string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Email == login || u.Username == login })
}

// fakeArticleRepo is an in-memory ArticleRepository for handler tests.
// writeErr, when set, makes every write operation fail with it.
type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[string]models.Article
	order    []string
	writeErr error
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[string]models.Article)}
}

func (r *fakeArticleRepo) CreateArticle(_ context.Context, article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	article.ID = primitive.NewObjectID()
	if article.Files == nil {
		article.Files = []string{}
	}
	r.articles[article.ID.Hex()] = *article
	r.order = append(r.order, article.ID.Hex())
	return nil
}

func (r *fakeArticleRepo) GetArticleByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.articles[id]; ok {
		return &a, nil
	}
	return nil, repositories.ErrArticleNotFound
}

func (r *fakeArticleRepo) GetAllArticles(_ context.Context) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Article, 0, len(r.order))
	// newest first
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.articles[r.order[i]])
	}
	return out, nil
}

func (r *fakeArticleRepo) UpdateArticle(_ context.Context, id string, article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	if _, ok := r.articles[id]; !ok {
		return repositories.ErrArticleNotFound
	}
	r.articles[id] = *article
	return nil
}

func (r *fakeArticleRepo) DeleteArticle(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return repositories.ErrArticleNotFound
	}
	delete(r.articles, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Event, len(p.events))
	copy(out, p.events)
	return out
}
