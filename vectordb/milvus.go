package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

const (
	milvusFieldID       = "id"
	milvusFieldText     = "text"
	milvusFieldMetadata = "metadata"
	milvusFieldVector   = "vector"

	milvusMaxIDLength   = 64
	milvusMaxTextLength = 65535
)

// milvusProvider keeps one Milvus collection per school. Documents are stored
// as varchar id/text plus a JSON metadata field, vectors indexed with cosine
// similarity via AUTOINDEX.
type milvusProvider struct {
	client client.Client
}

func newMilvusProvider(cfg *config.VectorDBConfig) (Provider, error) {
	port := cfg.Port
	if port == 0 {
		port = 19530
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := client.NewClient(ctx, client.Config{
		Address:  fmt.Sprintf("%s:%d", cfg.Host, port),
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus at %s:%d: %w", cfg.Host, port, err)
	}
	return &milvusProvider{client: c}, nil
}

func (p *milvusProvider) EnsureCollection(ctx context.Context, name string, dim int) error {
	has, err := p.client.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if has {
		existing, err := p.collectionDim(ctx, name)
		if err != nil {
			return err
		}
		if existing != 0 && existing != dim {
			return fmt.Errorf("collection %s: have %d, want %d: %w", name, existing, dim, ErrDimensionMismatch)
		}
		return p.client.LoadCollection(ctx, name, false)
	}

	collSchema := &entity.Schema{
		CollectionName: name,
		Fields: []*entity.Field{
			entity.NewField().WithName(milvusFieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(milvusMaxIDLength).WithIsPrimaryKey(true),
			entity.NewField().WithName(milvusFieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(milvusMaxTextLength),
			entity.NewField().WithName(milvusFieldMetadata).WithDataType(entity.FieldTypeJSON),
			entity.NewField().WithName(milvusFieldVector).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)),
		},
	}
	if err := p.client.CreateCollection(ctx, collSchema, 1); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	index, err := entity.NewIndexAUTOINDEX(entity.COSINE)
	if err != nil {
		return fmt.Errorf("build index spec for %s: %w", name, err)
	}
	if err := p.client.CreateIndex(ctx, name, milvusFieldVector, index, false); err != nil {
		return fmt.Errorf("create index on %s: %w", name, err)
	}
	if err := p.client.LoadCollection(ctx, name, false); err != nil {
		return fmt.Errorf("load collection %s: %w", name, err)
	}
	logger.Infof("milvus: created collection %s (dim=%d)", name, dim)
	return nil
}

func (p *milvusProvider) Upsert(ctx context.Context, collection string, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(docs))
	texts := make([]string, 0, len(docs))
	metas := make([][]byte, 0, len(docs))
	vectors := make([][]float32, 0, len(docs))
	dim := 0
	for _, doc := range docs {
		meta := doc.Metadata
		if meta == nil {
			meta = map[string]interface{}{}
		}
		raw, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", doc.ID, err)
		}
		ids = append(ids, doc.ID)
		texts = append(texts, doc.Content)
		metas = append(metas, raw)
		vectors = append(vectors, doc.Vector)
		dim = len(doc.Vector)
	}

	_, err := p.client.Upsert(ctx, collection, "",
		entity.NewColumnVarChar(milvusFieldID, ids),
		entity.NewColumnVarChar(milvusFieldText, texts),
		entity.NewColumnJSONBytes(milvusFieldMetadata, metas),
		entity.NewColumnFloatVector(milvusFieldVector, dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(docs), collection, err)
	}
	return nil
}

func (p *milvusProvider) Search(ctx context.Context, collection string, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error) {
	has, err := p.client.HasCollection(ctx, collection)
	if err != nil || !has {
		if err != nil {
			logger.Warnf("milvus: existence check for %s failed: %v", collection, err)
		}
		return nil, nil
	}

	topK := 10
	threshold := 0.0
	expr := ""
	if opts != nil {
		if opts.TopK > 0 {
			topK = opts.TopK
		}
		threshold = opts.Threshold
		expr = milvusFilterExpr(opts.Filters)
	}

	searchParam, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, fmt.Errorf("build search params: %w", err)
	}
	resultSets, err := p.client.Search(ctx, collection, nil, expr,
		[]string{milvusFieldID, milvusFieldText, milvusFieldMetadata},
		[]entity.Vector{entity.FloatVector(vector)},
		milvusFieldVector, entity.COSINE, topK, searchParam)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	var results []schema.SearchResult
	for _, set := range resultSets {
		texts, _ := set.Fields.GetColumn(milvusFieldText).(*entity.ColumnVarChar)
		metas, _ := set.Fields.GetColumn(milvusFieldMetadata).(*entity.ColumnJSONBytes)
		for i := 0; i < set.ResultCount; i++ {
			score := float64(set.Scores[i])
			if score < threshold {
				continue
			}
			doc := schema.Document{Metadata: map[string]interface{}{}}
			if id, err := set.IDs.GetAsString(i); err == nil {
				doc.ID = id
			}
			if texts != nil {
				if text, err := texts.ValueByIdx(i); err == nil {
					doc.Content = text
				}
			}
			if metas != nil {
				if raw, err := metas.ValueByIdx(i); err == nil && len(raw) > 0 {
					if err := json.Unmarshal(raw, &doc.Metadata); err != nil {
						logger.Warnf("milvus: bad metadata on %s: %v", doc.ID, err)
					}
				}
			}
			results = append(results, schema.SearchResult{Document: doc, Score: score})
		}
	}
	return results, nil
}

func (p *milvusProvider) CollectionInfo(ctx context.Context, name string) (schema.CollectionInfo, error) {
	has, err := p.client.HasCollection(ctx, name)
	if err != nil {
		return schema.CollectionInfo{}, fmt.Errorf("check collection %s: %w", name, err)
	}
	if !has {
		return schema.CollectionInfo{Name: name}, nil
	}
	stats, err := p.client.GetCollectionStatistics(ctx, name)
	if err != nil {
		return schema.CollectionInfo{}, fmt.Errorf("inspect collection %s: %w", name, err)
	}
	count, _ := strconv.ParseInt(stats["row_count"], 10, 64)
	dim, err := p.collectionDim(ctx, name)
	if err != nil {
		return schema.CollectionInfo{}, err
	}
	return schema.CollectionInfo{Name: name, PointCount: count, Dimension: dim}, nil
}

func (p *milvusProvider) GetProviderType() string { return "milvus" }

func (p *milvusProvider) Close() error {
	return p.client.Close()
}

func (p *milvusProvider) collectionDim(ctx context.Context, name string) (int, error) {
	coll, err := p.client.DescribeCollection(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("describe collection %s: %w", name, err)
	}
	for _, field := range coll.Schema.Fields {
		if field.Name != milvusFieldVector {
			continue
		}
		if raw, ok := field.TypeParams[entity.TypeParamDim]; ok {
			dim, err := strconv.Atoi(raw)
			if err != nil {
				return 0, fmt.Errorf("parse dimension of %s: %w", name, err)
			}
			return dim, nil
		}
	}
	return 0, nil
}

// milvusFilterExpr turns payload equality filters into a boolean expression
// over the JSON metadata field.
func milvusFilterExpr(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	terms := make([]string, 0, len(filters))
	for k, v := range filters {
		switch val := v.(type) {
		case string:
			terms = append(terms, fmt.Sprintf(`%s["%s"] == "%s"`, milvusFieldMetadata, k, strings.ReplaceAll(val, `"`, `\"`)))
		default:
			terms = append(terms, fmt.Sprintf(`%s["%s"] == %v`, milvusFieldMetadata, k, val))
		}
	}
	return strings.Join(terms, " && ")
}
