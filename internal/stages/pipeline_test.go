package stages

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
	"github.com/sevigo/titleforge/internal/titlegen"
	"github.com/sevigo/titleforge/internal/youtube"
)

type fakeResolver struct {
	channel core.Channel
	err     error
}

func (f *fakeResolver) ResolveChannel(context.Context, string) (core.Channel, error) {
	return f.channel, f.err
}

type fakeFetcher struct {
	videos []core.Video
	err    error
}

func (f *fakeFetcher) LatestVideos(context.Context, string, int64) ([]core.Video, error) {
	return f.videos, f.err
}

type fakeGenerator struct {
	titles []titlegen.GeneratedTitle
	err    error
}

func (f *fakeGenerator) ImproveTitles(context.Context, string, []string) ([]titlegen.GeneratedTitle, error) {
	return f.titles, f.err
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMail
	err      error
	nextID   int
	idPrefix string
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	f.nextID++
	return fmt.Sprintf("%s%d", f.idPrefix, f.nextID), nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) mail(i int) sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[i]
}

func makeVideos(n int) []core.Video {
	videos := make([]core.Video, n)
	for i := range videos {
		videos[i] = core.Video{
			VideoID:     fmt.Sprintf("vid%d", i+1),
			Title:       fmt.Sprintf("boring title %d", i+1),
			URL:         fmt.Sprintf("https://www.youtube.com/watch?v=vid%d", i+1),
			PublishedAt: "2025-06-01T00:00:00Z",
		}
	}
	return videos
}

func makeGenerated(n int) []titlegen.GeneratedTitle {
	titles := make([]titlegen.GeneratedTitle, n)
	for i := range titles {
		titles[i] = titlegen.GeneratedTitle{
			Original:  fmt.Sprintf("boring title %d", i+1),
			Improved:  fmt.Sprintf("Exciting Title %d!", i+1),
			Rationale: "stronger hook",
		}
	}
	return titles
}

// pipelineHarness wires all stages over a real bus and memory store with the
// given fakes, and tears the bus down at test end.
func pipelineHarness(t *testing.T, resolver SourceResolver, fetcher VideoFetcher, generator TitleGenerator, resultSender, noticeSender EmailSender) (*Submission, *store.MemoryStore) {
	t.Helper()
	logger := discardLogger()
	jobStore := store.NewMemoryStore(logger)
	b := bus.New(16, logger)

	RegisterAll(b,
		NewResolution(jobStore, b, resolver, logger),
		NewFetch(jobStore, b, fetcher, logger),
		NewTransform(jobStore, b, generator, logger),
		NewDelivery(jobStore, b, resultSender, logger),
		NewNotifier(b, noticeSender, logger),
	)
	t.Cleanup(b.Stop)

	return NewSubmission(jobStore, b, logger), jobStore
}

func waitTerminal(t *testing.T, jobStore store.JobStore, jobID string) *core.Job {
	t.Helper()
	var job *core.Job
	require.Eventually(t, func() bool {
		j, err := jobStore.Get(context.Background(), jobID)
		if err != nil {
			return false
		}
		job = j
		return j.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestPipelineHappyPath(t *testing.T) {
	results := &fakeSender{idPrefix: "re_"}
	notices := &fakeSender{idPrefix: "nt_"}
	sub, jobStore := pipelineHarness(t,
		&fakeResolver{channel: core.Channel{ID: "UC123", Title: "Tech Weekly"}},
		&fakeFetcher{videos: makeVideos(5)},
		&fakeGenerator{titles: makeGenerated(5)},
		results, notices,
	)

	job, err := sub.Submit(context.Background(), "Tech Weekly", "creator@example.com")
	require.NoError(t, err)

	final := waitTerminal(t, jobStore, job.JobID)
	require.Equal(t, core.StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	assert.Equal(t, "UC123", final.ChannelID)
	assert.Equal(t, "Tech Weekly", final.ChannelTitle)
	assert.Equal(t, "re_1", final.EmailID)
	assert.Empty(t, final.Error)

	require.Len(t, final.Videos, 5)
	require.Len(t, final.ImprovedTitles, 5)
	for i, s := range final.ImprovedTitles {
		assert.Equal(t, final.Videos[i].Title, s.Original)
		assert.Equal(t, final.Videos[i].URL, s.URL)
		assert.NotEmpty(t, s.Improved)
	}

	require.Equal(t, 1, results.count())
	mail := results.mail(0)
	assert.Equal(t, "creator@example.com", mail.to)
	assert.Equal(t, "Improved Titles for Tech Weekly", mail.subject)
	assert.Contains(t, mail.body, "TitleForge - Improved Titles for Tech Weekly")
	assert.Contains(t, mail.body, "1. Original: boring title 1")
	assert.Contains(t, mail.body, "Improved: Exciting Title 1!")
	assert.Contains(t, mail.body, "Watch: https://www.youtube.com/watch?v=vid1")
	assert.Zero(t, notices.count())
}

func TestPipelineChannelNotFound(t *testing.T) {
	results := &fakeSender{idPrefix: "re_"}
	notices := &fakeSender{idPrefix: "nt_"}
	sub, jobStore := pipelineHarness(t,
		&fakeResolver{err: youtube.ErrChannelNotFound},
		&fakeFetcher{}, &fakeGenerator{}, results, notices,
	)

	job, err := sub.Submit(context.Background(), "NoSuchChannel", "creator@example.com")
	require.NoError(t, err)

	final := waitTerminal(t, jobStore, job.JobID)
	require.Equal(t, core.StatusFailed, final.Status)
	assert.Nil(t, final.CompletedAt)
	assert.Contains(t, final.Error, `could not find a channel named "NoSuchChannel"`)

	require.Eventually(t, func() bool { return notices.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, results.count())
	notice := notices.mail(0)
	assert.Equal(t, "creator@example.com", notice.to)
	assert.Contains(t, notice.body, "could not find a channel named")
}

func TestPipelineNoVideos(t *testing.T) {
	results := &fakeSender{idPrefix: "re_"}
	notices := &fakeSender{idPrefix: "nt_"}
	sub, jobStore := pipelineHarness(t,
		&fakeResolver{channel: core.Channel{ID: "UC123", Title: "Quiet Channel"}},
		&fakeFetcher{videos: nil},
		&fakeGenerator{}, results, notices,
	)

	job, err := sub.Submit(context.Background(), "Quiet Channel", "creator@example.com")
	require.NoError(t, err)

	final := waitTerminal(t, jobStore, job.JobID)
	require.Equal(t, core.StatusFailed, final.Status)
	assert.Equal(t, "No videos found for the channel", final.Error)

	require.Eventually(t, func() bool { return notices.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, results.count())
}

func TestPipelineGeneratorCountMismatch(t *testing.T) {
	results := &fakeSender{idPrefix: "re_"}
	notices := &fakeSender{idPrefix: "nt_"}
	sub, jobStore := pipelineHarness(t,
		&fakeResolver{channel: core.Channel{ID: "UC123", Title: "Tech Weekly"}},
		&fakeFetcher{videos: makeVideos(5)},
		&fakeGenerator{titles: makeGenerated(3)},
		results, notices,
	)

	job, err := sub.Submit(context.Background(), "Tech Weekly", "creator@example.com")
	require.NoError(t, err)

	final := waitTerminal(t, jobStore, job.JobID)
	require.Equal(t, core.StatusFailed, final.Status)
	assert.Contains(t, final.Error, "failed to improve the titles")

	require.Eventually(t, func() bool { return notices.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, results.count())
}

func TestPipelineDeliveryFailure(t *testing.T) {
	results := &fakeSender{err: errors.New("smtp on fire")}
	notices := &fakeSender{idPrefix: "nt_"}
	sub, jobStore := pipelineHarness(t,
		&fakeResolver{channel: core.Channel{ID: "UC123", Title: "Tech Weekly"}},
		&fakeFetcher{videos: makeVideos(2)},
		&fakeGenerator{titles: makeGenerated(2)},
		results, notices,
	)

	job, err := sub.Submit(context.Background(), "Tech Weekly", "creator@example.com")
	require.NoError(t, err)

	final := waitTerminal(t, jobStore, job.JobID)
	require.Equal(t, core.StatusFailed, final.Status)
	assert.Contains(t, final.Error, "failed to deliver the result email")
	// The intermediate artifacts survive the failure for inspection.
	assert.Len(t, final.Videos, 2)
	assert.Len(t, final.ImprovedTitles, 2)

	require.Eventually(t, func() bool { return notices.count() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestPipelineNotifierFailureIsSwallowed(t *testing.T) {
	results := &fakeSender{idPrefix: "re_"}
	notices := &fakeSender{err: errors.New("notice mail down")}
	sub, jobStore := pipelineHarness(t,
		&fakeResolver{err: youtube.ErrChannelNotFound},
		&fakeFetcher{}, &fakeGenerator{}, results, notices,
	)

	job, err := sub.Submit(context.Background(), "NoSuchChannel", "creator@example.com")
	require.NoError(t, err)

	// The job still reaches its terminal state even though the notifier's own
	// send fails.
	final := waitTerminal(t, jobStore, job.JobID)
	assert.Equal(t, core.StatusFailed, final.Status)
}

func TestQueryListsNewestFirst(t *testing.T) {
	logger := discardLogger()
	jobStore := store.NewMemoryStore(logger)
	q := NewQuery(jobStore, logger)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, jobStore.Set(context.Background(), &core.Job{
			JobID:     fmt.Sprintf("job-%d_abc", i),
			Channel:   "c",
			Email:     "a@b.co",
			Status:    core.StatusQueued,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	jobs, err := q.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "job-2_abc", jobs[0].JobID)
	assert.Equal(t, "job-0_abc", jobs[2].JobID)
}
