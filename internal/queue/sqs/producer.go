package sqsqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const defaultGroupBuckets = 2000

type Producer struct {
	SQS          *sqs.Client
	QueueURL     string
	GroupBuckets int
}

// PreferenceJob carries one user's newly submitted channel configuration.
// Channels hold the raw wire forms; the worker decodes them.
type PreferenceJob struct {
	UserID    string            `json:"userId"`
	RequestID string            `json:"requestId"`
	Channels  []json.RawMessage `json:"channels"`
}

func (p *Producer) EnqueuePreferenceUpdate(ctx context.Context, job PreferenceJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	groupID := messageGroupIDBucketed(job.UserID, p.GroupBuckets)
	_, err = p.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               &p.QueueURL,
		MessageBody:            str(string(body)),
		MessageGroupId:         str(groupID),
		MessageDeduplicationId: str(job.RequestID),
	})
	return err
}

// messageGroupIDBucketed hashes the user into a bounded number of FIFO
// groups: updates for one user stay ordered while the queue keeps its
// parallelism across users.
func messageGroupIDBucketed(userID string, buckets int) string {
	if buckets <= 0 {
		buckets = defaultGroupBuckets
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return fmt.Sprintf("pref-%d", h.Sum32()%uint32(buckets))
}

func str(s string) *string { return &s }
