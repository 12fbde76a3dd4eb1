package cloudwatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	// CloudWatch limits
	maxMetricsPerRequest = 1000
	maxRetries           = 3
	initialBackoff       = 100 * time.Millisecond
)

// MetricsPublisherConfig holds configuration for CloudWatch counter publishing.
type MetricsPublisherConfig struct {
	Namespace         string            // CloudWatch namespace (e.g., "BuoyWatch/Core")
	Region            string            // AWS region (e.g., "us-east-1")
	Endpoint          string            // Optional endpoint override (for LocalStack)
	AccessKeyID       string            // AWS access key
	SecretAccessKey   string            // AWS secret key
	DefaultDimensions map[string]string // Default dimensions added to all samples
	FlushInterval     time.Duration     // Automatic flush interval
}

// MetricsPublisher accumulates named counters and ships them to AWS
// CloudWatch in batches. Implements the port.MetricsPublisher interface.
type MetricsPublisher struct {
	client            metricsAPI
	namespace         string
	defaultDimensions map[string]string

	counters map[string]float64
	mu       sync.Mutex

	flushTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// metricsAPI is the slice of the CloudWatch client the publisher uses.
type metricsAPI interface {
	PutMetricData(ctx context.Context, input *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// NewMetricsPublisher creates a new CloudWatch counter publisher.
func NewMetricsPublisher(ctx context.Context, cfg MetricsPublisherConfig) (*MetricsPublisher, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 60 * time.Second
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	p := newMetricsPublisher(cloudwatch.NewFromConfig(awsCfg), cfg)

	// Start background flush goroutine
	p.wg.Add(1)
	go p.flushLoop(cfg.FlushInterval)

	return p, nil
}

// newMetricsPublisher wires a publisher around an existing client.
func newMetricsPublisher(client metricsAPI, cfg MetricsPublisherConfig) *MetricsPublisher {
	return &MetricsPublisher{
		client:            client,
		namespace:         cfg.Namespace,
		defaultDimensions: cfg.DefaultDimensions,
		counters:          make(map[string]float64),
		flushTicker:       time.NewTicker(cfg.FlushInterval),
		stopCh:            make(chan struct{}),
	}
}

// Count adds delta to a named counter. The sample leaves the process on
// the next flush.
func (p *MetricsPublisher) Count(name string, delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters[name] += delta
}

// Flush forces immediate publication of all accumulated counters.
func (p *MetricsPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	if len(p.counters) == 0 {
		p.mu.Unlock()
		return nil
	}
	snapshot := p.counters
	p.counters = make(map[string]float64)
	p.mu.Unlock()

	now := time.Now().UTC()
	data := make([]types.MetricDatum, 0, len(snapshot))
	for name, value := range snapshot {
		data = append(data, p.convertToDatum(name, value, now))
	}

	// Publish in chunks (CloudWatch limit: 1000 metrics/request)
	for i := 0; i < len(data); i += maxMetricsPerRequest {
		end := i + maxMetricsPerRequest
		if end > len(data) {
			end = len(data)
		}

		if err := p.publishBatchWithRetry(ctx, data[i:end]); err != nil {
			// Put the unsent counters back so the next flush retries them
			p.mu.Lock()
			for name, value := range snapshot {
				p.counters[name] += value
			}
			p.mu.Unlock()
			return fmt.Errorf("failed to publish chunk: %w", err)
		}
	}

	return nil
}

// Close stops the background flush goroutine and flushes remaining counters.
func (p *MetricsPublisher) Close() error {
	close(p.stopCh)
	p.flushTicker.Stop()
	p.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return p.Flush(ctx)
}

// flushLoop runs in a background goroutine and flushes periodically.
func (p *MetricsPublisher) flushLoop(interval time.Duration) {
	defer p.wg.Done()

	for {
		select {
		case <-p.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := p.Flush(ctx); err != nil {
				// Counters were restored, the next tick retries
				_ = err
			}
			cancel()
		case <-p.stopCh:
			return
		}
	}
}

// publishBatchWithRetry publishes a batch of samples with exponential backoff retry.
func (p *MetricsPublisher) publishBatchWithRetry(ctx context.Context, data []types.MetricDatum) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		input := &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: data,
		}

		_, err := p.client.PutMetricData(ctx, input)
		if err == nil {
			return nil
		}

		lastErr = err

		// Exponential backoff before retry
		if attempt < maxRetries-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// convertToDatum converts one counter sample to a CloudWatch MetricDatum.
func (p *MetricsPublisher) convertToDatum(name string, value float64, at time.Time) types.MetricDatum {
	dimensions := make([]types.Dimension, 0, len(p.defaultDimensions))
	for key, val := range p.defaultDimensions {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(key),
			Value: aws.String(val),
		})
	}

	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(at),
		Dimensions: dimensions,
	}
}

// buildAWSConfig creates an AWS config with credentials.
func buildAWSConfig(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	// Add static credentials if provided
	if accessKeyID != "" && secretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override endpoint if specified (for LocalStack testing)
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return cfg, nil
}
