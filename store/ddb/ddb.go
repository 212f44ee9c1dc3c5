/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package ddb implements store.KV on a DynamoDB table with a single string
// partition key "K" and a value attribute "V". Pattern enumeration runs as a
// table scan filtered with begins_with on the literal part of the pattern;
// the incremental strategy carries DynamoDB's ExclusiveStartKey as its
// cursor.
package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/kvmodels/store"
)

// KV adapts one DynamoDB table to the store.KV contract.
type KV struct {
	client    *sdk.Client
	tableName string
}

// kvItem is the stored shape of one entry.
type kvItem struct {
	K string `dynamodbav:"K"`
	V string `dynamodbav:"V"`
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a KV over an existing client and table.
func New(client *sdk.Client, tableName string) *KV {
	return &KV{client: client, tableName: tableName}
}

// Open builds the client from credentials and wraps the table in one call.
func Open(awsAccessKey, awsSecretKey, awsRegion, tableName string) (*KV, error) {
	client, err := NewClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, err
	}
	return New(client, tableName), nil
}

// Set writes one entry.
func (d *KV) Set(ctx context.Context, key, value string) error {
	av, err := attributevalue.MarshalMap(kvItem{K: key, V: value})
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Get reads one entry.
func (d *KV) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       keyAttr(key),
	})
	if err != nil {
		return "", false, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return "", false, nil
	}
	var item kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return item.V, true, nil
}

// Delete removes entries one by one; DynamoDB treats missing keys as a
// successful delete.
func (d *KV) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		_, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
			TableName: &d.tableName,
			Key:       keyAttr(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete entry %q: %w", key, err)
		}
	}
	return nil
}

// ListKeys scans the whole table for matching keys, following pagination
// until exhaustion.
func (d *KV) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	input := d.scanInput(pattern, 0)

	var keys []string
	for {
		out, err := d.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		ks, err := itemKeys(out.Items)
		if err != nil {
			return nil, err
		}
		keys = append(keys, ks...)
		if len(out.LastEvaluatedKey) == 0 {
			return keys, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// ScanKeys performs one scan page. The cursor is the last evaluated key
// string; an empty returned cursor ends the scan. Because the filter runs
// server-side after pagination, a page may legitimately carry fewer keys
// than count, including zero.
func (d *KV) ScanKeys(ctx context.Context, pattern, cursor string, count int64) ([]string, string, error) {
	input := d.scanInput(pattern, int32(count))
	if cursor != "" {
		input.ExclusiveStartKey = keyAttr(cursor)
	}

	out, err := d.client.Scan(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("scan error: %w", err)
	}
	keys, err := itemKeys(out.Items)
	if err != nil {
		return nil, "", err
	}
	if len(out.LastEvaluatedKey) == 0 {
		return keys, "", nil
	}
	var last kvItem
	if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &last); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal scan cursor: %w", err)
	}
	return keys, last.K, nil
}

func (d *KV) scanInput(pattern string, limit int32) *sdk.ScanInput {
	literal, wildcard := store.SplitPattern(pattern)

	filterExpr := "begins_with(#k, :p)"
	if !wildcard {
		filterExpr = "#k = :p"
	}
	input := &sdk.ScanInput{
		TableName:            &d.tableName,
		FilterExpression:     &filterExpr,
		ProjectionExpression: aws.String("#k"),
		ExpressionAttributeNames: map[string]string{
			"#k": "K",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: literal},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	return input
}

func keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"K": &types.AttributeValueMemberS{Value: key},
	}
}

func itemKeys(items []map[string]types.AttributeValue) ([]string, error) {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		var entry kvItem
		if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry key: %w", err)
		}
		keys = append(keys, entry.K)
	}
	return keys, nil
}
