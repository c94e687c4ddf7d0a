package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/avdonin/foodreel/internal/config"
	"github.com/avdonin/foodreel/internal/models"
)

const ProductIndex = "products"

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info failed: %s: %s", res.Status(), body)
	}

	return client, nil
}

// IndexProduct upserts a product document keyed by its database ID.
func IndexProduct(ctx context.Context, client *elasticsearch.Client, product *models.Product) error {
	if client == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(product); err != nil {
		return fmt.Errorf("es: encode product: %w", err)
	}

	res, err := client.Index(
		ProductIndex,
		&buf,
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(fmt.Sprint(product.ID)),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", product.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index product %d: %s", product.ID, res.Status())
	}
	return nil
}

func DeleteProduct(ctx context.Context, client *elasticsearch.Client, productID uint) error {
	if client == nil {
		return nil
	}
	res, err := client.Delete(
		ProductIndex,
		fmt.Sprint(productID),
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", productID, err)
	}
	defer res.Body.Close()
	// 404 is fine: the document was never indexed or is already gone.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete product %d: %s", productID, res.Status())
	}
	return nil
}
