package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dreschagin/buoywatch/internal/application/port"
)

const (
	defaultListLimit = 24
	maxListLimit     = 100

	attrPK           = "PK"
	attrSK           = "SK"
	attrExportID     = "export_id"
	attrTeamID       = "team_id"
	attrS3Key        = "s3_key"
	attrURL          = "url"
	attrParameterIDs = "parameter_ids"
	attrStart        = "range_start"
	attrEnd          = "range_end"
	attrCadenceSec   = "cadence_sec"
	attrRowCount     = "row_count"
	attrSizeBytes    = "size_bytes"
	attrCreatedAt    = "created_at"
)

type Config struct {
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
}

// ExportMetadataRepository keeps the export index in DynamoDB.
// PK is the team, SK orders exports by creation time so a reverse
// range query yields newest-first pages.
type ExportMetadataRepository struct {
	client      *dynamodb.Client
	tableName   string
	strongReads bool
}

func NewExportMetadataRepository(ctx context.Context, cfg Config) (*ExportMetadataRepository, error) {
	if strings.TrimSpace(cfg.TableName) == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("both dynamodb access key id and secret access key are required for static credentials")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(options *dynamodb.Options) {
		if strings.TrimSpace(cfg.Endpoint) != "" {
			endpoint := strings.TrimSpace(cfg.Endpoint)
			options.BaseEndpoint = &endpoint
		}
	})

	return &ExportMetadataRepository{
		client:      client,
		tableName:   strings.TrimSpace(cfg.TableName),
		strongReads: cfg.StrongReads,
	}, nil
}

// Put stores one export record
func (r *ExportMetadataRepository) Put(ctx context.Context, record port.ExportMetadata) error {
	if record.ID == "" || record.TeamID == "" {
		return fmt.Errorf("export id and team id are required")
	}

	item := map[string]types.AttributeValue{
		attrPK:         stringAttr(teamPK(record.TeamID)),
		attrSK:         stringAttr(exportSK(record.CreatedAt, record.ID)),
		attrExportID:   stringAttr(record.ID),
		attrTeamID:     stringAttr(record.TeamID),
		attrS3Key:      stringAttr(record.S3Key),
		attrURL:        stringAttr(record.URL),
		attrStart:      numberAttr(record.Start.UTC().UnixMilli()),
		attrEnd:        numberAttr(record.End.UTC().UnixMilli()),
		attrCadenceSec: numberAttr(int64(record.Cadence / time.Second)),
		attrRowCount:   numberAttr(int64(record.RowCount)),
		attrSizeBytes:  numberAttr(int64(record.SizeBytes)),
		attrCreatedAt:  numberAttr(record.CreatedAt.UTC().UnixMilli()),
	}
	if len(record.ParameterIDs) > 0 {
		ids := make([]types.AttributeValue, len(record.ParameterIDs))
		for i, id := range record.ParameterIDs {
			ids[i] = numberAttr(id)
		}
		item[attrParameterIDs] = &types.AttributeValueMemberL{Value: ids}
	}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put export metadata: %w", err)
	}
	return nil
}

// List returns a team's export records, newest-first
func (r *ExportMetadataRepository) List(ctx context.Context, teamID string, limit int) ([]port.ExportMetadata, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, fmt.Errorf("team id is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	pk := teamPK(teamID)
	keyCondition := fmt.Sprintf("%s = :pk", attrPK)
	scanForward := false
	queryLimit := int32(limit)

	output, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &r.tableName,
		KeyConditionExpression: &keyCondition,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringAttr(pk),
		},
		ScanIndexForward: &scanForward,
		Limit:            &queryLimit,
		ConsistentRead:   &r.strongReads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query export metadata: %w", err)
	}

	records := make([]port.ExportMetadata, 0, len(output.Items))
	for _, item := range output.Items {
		records = append(records, itemToRecord(item))
	}
	return records, nil
}

func itemToRecord(item map[string]types.AttributeValue) port.ExportMetadata {
	record := port.ExportMetadata{
		ID:        stringValue(item[attrExportID]),
		TeamID:    stringValue(item[attrTeamID]),
		S3Key:     stringValue(item[attrS3Key]),
		URL:       stringValue(item[attrURL]),
		Start:     timeValue(item[attrStart]),
		End:       timeValue(item[attrEnd]),
		Cadence:   time.Duration(numberValue(item[attrCadenceSec])) * time.Second,
		RowCount:  int(numberValue(item[attrRowCount])),
		SizeBytes: int(numberValue(item[attrSizeBytes])),
		CreatedAt: timeValue(item[attrCreatedAt]),
	}

	if list, ok := item[attrParameterIDs].(*types.AttributeValueMemberL); ok {
		record.ParameterIDs = make([]int64, 0, len(list.Value))
		for _, v := range list.Value {
			record.ParameterIDs = append(record.ParameterIDs, numberValue(v))
		}
	}
	return record
}

func teamPK(teamID string) string {
	return "TEAM#" + teamID
}

// exportSK keeps records sortable by creation time with the id as a
// tie-breaker
func exportSK(createdAt time.Time, id string) string {
	return fmt.Sprintf("EXPORT#%013d#%s", createdAt.UTC().UnixMilli(), id)
}

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberAttr(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func stringValue(attr types.AttributeValue) string {
	if s, ok := attr.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func numberValue(attr types.AttributeValue) int64 {
	if n, ok := attr.(*types.AttributeValueMemberN); ok {
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err == nil {
			return v
		}
	}
	return 0
}

func timeValue(attr types.AttributeValue) time.Time {
	ms := numberValue(attr)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
