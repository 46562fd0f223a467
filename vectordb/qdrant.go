package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

const qdrantContentField = "text"

// qdrantProvider stores points in a Qdrant server over gRPC, one named
// collection per school, cosine distance.
type qdrantProvider struct {
	client *qdrant.Client
}

func newQdrantProvider(cfg *config.VectorDBConfig) (Provider, error) {
	port := cfg.Port
	if port == 0 {
		port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.Password,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant at %s:%d: %w", cfg.Host, port, err)
	}
	return &qdrantProvider{client: client}, nil
}

func (p *qdrantProvider) EnsureCollection(ctx context.Context, name string, dim int) error {
	exists, err := p.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if exists {
		info, err := p.client.GetCollectionInfo(ctx, name)
		if err != nil {
			return fmt.Errorf("inspect collection %s: %w", name, err)
		}
		size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size != 0 && size != uint64(dim) {
			return fmt.Errorf("collection %s: have %d, want %d: %w", name, size, dim, ErrDimensionMismatch)
		}
		return nil
	}
	err = p.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	logger.Infof("qdrant: created collection %s (dim=%d)", name, dim)
	return nil
}

func (p *qdrantProvider) Upsert(ctx context.Context, collection string, docs []schema.Document) error {
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		payload := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			payload[k] = v
		}
		payload[qdrantContentField] = doc.Content
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(doc.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}
	_, err := p.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

func (p *qdrantProvider) Search(ctx context.Context, collection string, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	exists, err := p.client.CollectionExists(ctx, collection)
	if err != nil || !exists {
		if err != nil {
			logger.Warnf("qdrant: existence check for %s failed: %v", collection, err)
		}
		return nil, nil
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if opts != nil {
		if opts.TopK > 0 {
			query.Limit = qdrant.PtrOf(uint64(opts.TopK))
		}
		if opts.Threshold > 0 {
			query.ScoreThreshold = qdrant.PtrOf(float32(opts.Threshold))
		}
		if len(opts.Filters) > 0 {
			must := make([]*qdrant.Condition, 0, len(opts.Filters))
			for k, v := range opts.Filters {
				must = append(must, qdrant.NewMatch(k, fmt.Sprint(v)))
			}
			query.Filter = &qdrant.Filter{Must: must}
		}
	}

	scored, err := p.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	results := make([]schema.SearchResult, 0, len(scored))
	for _, point := range scored {
		doc := schema.Document{
			ID:       point.GetId().GetUuid(),
			Metadata: make(map[string]interface{}, len(point.GetPayload())),
		}
		for k, v := range point.GetPayload() {
			if k == qdrantContentField {
				doc.Content = v.GetStringValue()
				continue
			}
			doc.Metadata[k] = qdrantValueToAny(v)
		}
		results = append(results, schema.SearchResult{
			Document: doc,
			Score:    float64(point.GetScore()),
		})
	}
	return results, nil
}

func (p *qdrantProvider) CollectionInfo(ctx context.Context, name string) (schema.CollectionInfo, error) {
	exists, err := p.client.CollectionExists(ctx, name)
	if err != nil {
		return schema.CollectionInfo{}, fmt.Errorf("check collection %s: %w", name, err)
	}
	if !exists {
		return schema.CollectionInfo{Name: name}, nil
	}
	info, err := p.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return schema.CollectionInfo{}, fmt.Errorf("inspect collection %s: %w", name, err)
	}
	return schema.CollectionInfo{
		Name:       name,
		PointCount: int64(info.GetPointsCount()),
		Dimension:  int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
	}, nil
}

func (p *qdrantProvider) GetProviderType() string { return "qdrant" }

func (p *qdrantProvider) Close() error {
	return p.client.Close()
}

func qdrantValueToAny(v *qdrant.Value) interface{} {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			out = append(out, qdrantValueToAny(item))
		}
		return out
	default:
		return nil
	}
}
