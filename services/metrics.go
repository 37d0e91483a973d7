// File: services/metrics.go
package services

import (
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"inohax-registration/logger"
)

// Namespace for all registration metrics.
var metricsNamespace = "InohaxRegistration"

var (
	metricsOnce    sync.Once
	metricsEnabled bool
	cwClient       *cloudwatch.CloudWatch
)

// EnableMetrics turns on CloudWatch metric publication. Without this call all
// Publish* functions are no-ops, so local and test runs never touch AWS.
func EnableMetrics() {
	metricsOnce.Do(func() {
		cwClient = cloudwatch.New(session.Must(session.NewSession()))
		metricsEnabled = true
	})
}

// PublishRegistrationAccepted records an accepted registration and whether it
// was durably saved or served from the degraded path.
func PublishRegistrationAccepted(saved bool) {
	putMetric("RegistrationsAccepted", 1, "Count")
	if !saved {
		putMetric("DegradedSaves", 1, "Count")
	}
}

// PublishFeedConnections pushes the current admin feed connection count.
func PublishFeedConnections(count int) {
	putMetric("FeedConnections", float64(count), "Count")
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string) {
	if !metricsEnabled {
		return
	}
	_, err := cwClient.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Timestamp:  aws.Time(time.Now()),
				Value:      aws.Float64(value),
				Unit:       aws.String(unit),
			},
		},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}
