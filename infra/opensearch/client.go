package opensearch

import (
	"crypto/tls"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/payrelay/payrelay/infra/config"
)

// Client wraps the OpenSearch client.
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client.
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // For development/testing
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client: client,
		config: cfg,
	}

	if err := osClient.setupIndices(); err != nil {
		log.Printf("Warning: Failed to setup OpenSearch indices: %v", err)
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client.
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// setupIndices creates the per-region payment log indices.
func (c *Client) setupIndices() error {
	regions := []string{"in", "ae", "us", "gb", "sg"}

	for _, region := range regions {
		indexName := c.GetLogIndexName(region)

		exists, err := c.indexExists(indexName)
		if err != nil {
			log.Printf("Error checking index %s: %v", indexName, err)
			continue
		}

		if !exists {
			if err := c.createLogIndex(indexName); err != nil {
				log.Printf("Error creating index %s: %v", indexName, err)
				continue
			}
			log.Printf("Created OpenSearch index: %s", indexName)
		}
	}

	return nil
}

// indexExists checks if an index exists.
func (c *Client) indexExists(indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(nil, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// createLogIndex creates a new index for payment logs with proper mapping.
func (c *Client) createLogIndex(indexName string) error {
	mapping := `{
		"mappings": {
			"properties": {
				"timestamp": {
					"type": "date",
					"format": "strict_date_optional_time||epoch_millis"
				},
				"region": {
					"type": "keyword"
				},
				"flow": {
					"type": "keyword"
				},
				"method": {
					"type": "keyword"
				},
				"endpoint": {
					"type": "keyword"
				},
				"request_id": {
					"type": "keyword"
				},
				"user_agent": {
					"type": "text"
				},
				"client_ip": {
					"type": "ip"
				},
				"request": {
					"type": "object",
					"properties": {
						"body": {
							"type": "text"
						}
					}
				},
				"response": {
					"type": "object",
					"properties": {
						"status_code": {
							"type": "integer"
						},
						"body": {
							"type": "text"
						},
						"processing_time_ms": {
							"type": "integer"
						}
					}
				},
				"payment_info": {
					"type": "object",
					"properties": {
						"payment_id": {
							"type": "keyword"
						},
						"order_id": {
							"type": "keyword"
						},
						"amount": {
							"type": "long"
						},
						"currency": {
							"type": "keyword"
						},
						"status": {
							"type": "keyword"
						},
						"requires_redirect": {
							"type": "boolean"
						}
					}
				},
				"error": {
					"type": "object",
					"properties": {
						"code": {
							"type": "keyword"
						},
						"message": {
							"type": "text"
						}
					}
				}
			}
		},
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(nil, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return &indexError{res.String()}
	}

	return nil
}

type indexError struct {
	detail string
}

func (e *indexError) Error() string {
	return "index creation error: " + e.detail
}

// GetLogIndexName returns the index name for a region's payment logs.
func (c *Client) GetLogIndexName(region string) string {
	if region == "" {
		return "payrelay-logs"
	}
	return "payrelay-" + strings.ToLower(region) + "-logs"
}

// IsEnabled returns whether OpenSearch logging is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.EnableLogging
}
