package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/internal/query"
)

// dogFields is the whitelist for the dogs listing pipeline.
var dogFields = []query.Field{
	{Name: "name", Column: "name"},
	{Name: "owner", Column: "owner"},
	{Name: "breed", Column: "breed"},
	{Name: "breedType", Column: "breed_type"},
	{Name: "popularity", Column: "popularity", Kind: query.Numeric},
	{Name: "intelligence", Column: "intelligence", Kind: query.Numeric},
	{Name: "photo", Column: "photo"},
	{Name: "createdAt", Column: "created_at", Kind: query.Time},
}

// DogService implements the dogs catalogue use cases. The Elasticsearch
// mirror is best effort: index failures are logged, never surfaced, so the
// catalogue stays writable when the search cluster is down.
type DogService struct {
	repo    repository.DogRepository
	builder *query.Builder
	es      *elasticsearch.Client
	esIndex string
	log     *logrus.Logger
}

func NewDogService(repo repository.DogRepository, es *elasticsearch.Client, esIndex string, log *logrus.Logger) *DogService {
	return &DogService{
		repo:    repo,
		builder: query.NewBuilder(dogFields, "createdAt"),
		es:      es,
		esIndex: esIndex,
		log:     log,
	}
}

// List runs the full query-feature pipeline: count, parse, paginate,
// execute. Documents that carry enough attributes get the derived
// description injected.
func (s *DogService) List(ctx context.Context, values url.Values) ([]map[string]any, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.builder.Parse(values)
	if err != nil {
		return nil, err
	}
	req, err = req.Paginate(count)
	if err != nil {
		return nil, err
	}
	docs, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		injectDescription(doc)
	}
	return docs, nil
}

// injectDescription derives the description attribute when the projection
// kept every part it is composed from.
func injectDescription(doc map[string]any) {
	name, ok1 := doc["name"].(string)
	breedType, ok2 := doc["breedType"].(string)
	breed, ok3 := doc["breed"].(string)
	photo, ok4 := doc["photo"].(string)
	if ok1 && ok2 && ok3 && ok4 {
		doc["description"] = fmt.Sprintf("%s is a %s %s, photo: %s", name, breedType, breed, photo)
	}
}

func (s *DogService) Get(ctx context.Context, id string) (*entity.Dog, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Description = d.Describe()
	return d, nil
}

func (s *DogService) Create(ctx context.Context, d *entity.Dog) (*entity.Dog, error) {
	if d.Owner == "" {
		d.Owner = "none"
	}
	if d.BreedType == "" {
		d.BreedType = entity.BreedTypePurebred
	}
	if d.Intelligence == 0 {
		d.Intelligence = 1
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	d.Description = d.Describe()
	s.indexDog(ctx, d)
	return d, nil
}

// UpdateDogInput carries the patchable attributes; nil means "leave as is".
type UpdateDogInput struct {
	Name         *string
	Owner        *string
	Breed        *string
	BreedType    *string
	Popularity   *float64
	Intelligence *float64
	Photo        *string
}

func (s *DogService) Update(ctx context.Context, id string, in UpdateDogInput) (*entity.Dog, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Owner != nil {
		d.Owner = *in.Owner
	}
	if in.Breed != nil {
		d.Breed = *in.Breed
	}
	if in.BreedType != nil {
		d.BreedType = *in.BreedType
	}
	if in.Popularity != nil {
		d.Popularity = *in.Popularity
	}
	if in.Intelligence != nil {
		d.Intelligence = *in.Intelligence
	}
	if in.Photo != nil {
		d.Photo = *in.Photo
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	d.Description = d.Describe()
	s.indexDog(ctx, d)
	return d, nil
}

func (s *DogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteDogIndex(ctx, id)
	return nil
}

func (s *DogService) Stats(ctx context.Context) ([]entity.BreedStats, error) {
	return s.repo.Stats(ctx)
}

func (s *DogService) TopSmart(ctx context.Context, n int) ([]entity.Dog, error) {
	dogs, err := s.repo.TopSmart(ctx, n)
	if err != nil {
		return nil, err
	}
	for i := range dogs {
		dogs[i].Description = dogs[i].Describe()
	}
	return dogs, nil
}

// Search runs a full-text multi_match over the Elasticsearch mirror.
func (s *DogService) Search(ctx context.Context, term string) ([]entity.Dog, error) {
	if s.es == nil {
		return nil, nil
	}
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     term,
				"fields":    []string{"name^2", "breed", "owner"},
				"fuzziness": "AUTO",
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.esIndex),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.Dog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	dogs := make([]entity.Dog, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		d.Description = d.Describe()
		dogs = append(dogs, d)
	}
	return dogs, nil
}

func (s *DogService) indexDog(ctx context.Context, d *entity.Dog) {
	if s.es == nil {
		return
	}
	b, err := json.Marshal(d)
	if err != nil {
		s.log.WithError(err).Warn("marshal dog for indexing")
		return
	}
	res, err := s.es.Index(s.esIndex, bytes.NewReader(b),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(d.ID),
	)
	if err != nil {
		s.log.WithError(err).WithField("dog_id", d.ID).Warn("index dog")
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.log.WithField("dog_id", d.ID).WithField("status", res.Status()).Warn("index dog")
	}
}

func (s *DogService) deleteDogIndex(ctx context.Context, id string) {
	if s.es == nil {
		return
	}
	res, err := s.es.Delete(s.esIndex, id, s.es.Delete.WithContext(ctx))
	if err != nil {
		s.log.WithError(err).WithField("dog_id", id).Warn("delete dog from index")
		return
	}
	defer res.Body.Close()
}
