//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
	"github.com/konchunas/screen-time-daemon/internal/infra"
	"github.com/konchunas/screen-time-daemon/internal/policy"
	"github.com/konchunas/screen-time-daemon/internal/usecase"
	"github.com/konchunas/screen-time-daemon/test/fixtures"
)

const gapTolerance = 50 * time.Second

var _ = Describe("Activity Recording", func() {
	var (
		tmpDir string
		logger *zap.Logger
		day    time.Time
		writer *infra.FrameLog
	)

	// record pushes one sample through the real pipeline.
	record := func(rec domain.Recorder, last *domain.Frame, now int64) *domain.Frame {
		next, err := rec.RecordSample(context.Background(), last, now)
		Expect(err).NotTo(HaveOccurred())
		return next
	}

	dayFileContent := func() string {
		data, err := os.ReadFile(filepath.Join(tmpDir, infra.DayFileName(day)))
		Expect(err).NotTo(HaveOccurred())
		return string(data)
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "screentimed-integration-*")
		Expect(err).NotTo(HaveOccurred())

		logger = zap.NewNop()
		day = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

		writer, err = infra.OpenFrameLog(tmpDir, day, logger)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		writer.Close()
		os.RemoveAll(tmpDir)
	})

	Describe("Continuous focus", func() {
		Context("when the same application stays focused", func() {
			It("should keep a single record and extend it in place", func() {
				sampler := fixtures.NewScriptedSampler(fixtures.SampleStep{App: "chromium"})
				rec := usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)

				var last *domain.Frame
				for _, now := range []int64{100, 110, 120, 130} {
					last = record(rec, last, now)
				}

				Expect(dayFileContent()).To(Equal("chromium;100;130\n"))
			})
		})

		Context("when focus moves between applications", func() {
			It("should append one record per application", func() {
				sampler := fixtures.NewScriptedSampler(
					fixtures.SampleStep{App: "chromium"},
					fixtures.SampleStep{App: "chromium"},
					fixtures.SampleStep{App: "code"},
					fixtures.SampleStep{App: "code"},
				)
				rec := usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)

				var last *domain.Frame
				for _, now := range []int64{100, 110, 120, 130} {
					last = record(rec, last, now)
				}

				Expect(dayFileContent()).To(Equal("chromium;100;110\ncode;120;130\n"))
			})
		})
	})

	Describe("Gap handling", func() {
		Context("when samples stop for longer than the tolerance", func() {
			It("should start a fresh record instead of bridging the gap", func() {
				sampler := fixtures.NewScriptedSampler(fixtures.SampleStep{App: "chromium"})
				rec := usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)

				var last *domain.Frame
				for _, now := range []int64{100, 110, 120, 300, 310} {
					last = record(rec, last, now)
				}

				Expect(dayFileContent()).To(Equal("chromium;100;120\nchromium;300;310\n"))
			})
		})
	})

	Describe("Ignored surfaces", func() {
		Context("when the desktop shell holds focus", func() {
			It("should write nothing", func() {
				sampler := fixtures.NewScriptedSampler(fixtures.SampleStep{App: "Desktop"})
				rec := usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)

				var last *domain.Frame
				for _, now := range []int64{100, 110, 120} {
					last = record(rec, last, now)
				}

				Expect(last).To(BeNil())
				Expect(dayFileContent()).To(BeEmpty())
			})
		})
	})

	Describe("Desktop entry learning", func() {
		It("should persist the desktop path the first time an application is seen", func() {
			sampler := fixtures.NewScriptedSampler(fixtures.SampleStep{App: "chromium", WindowID: "0x3200007"})
			sampler.DesktopPaths = map[string]string{
				"0x3200007": "/usr/share/applications/chromium.desktop",
			}

			appInfo, err := infra.OpenAppInfo(tmpDir, logger)
			Expect(err).NotTo(HaveOccurred())

			rec := usecase.NewRecorder(sampler, sampler, writer, appInfo, policy.DefaultIgnoreList(), gapTolerance, logger)

			var last *domain.Frame
			for _, now := range []int64{100, 110} {
				last = record(rec, last, now)
			}

			// Reload from disk to prove it was persisted, not just cached
			reloaded, err := infra.OpenAppInfo(tmpDir, logger)
			Expect(err).NotTo(HaveOccurred())
			path, ok := reloaded.Get("chromium")
			Expect(ok).To(BeTrue())
			Expect(path).To(Equal("/usr/share/applications/chromium.desktop"))
		})
	})

	Describe("Restart recovery", func() {
		Context("when the daemon restarts mid-day", func() {
			It("should append after the existing records without touching them", func() {
				sampler := fixtures.NewScriptedSampler(fixtures.SampleStep{App: "chromium"})
				rec := usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)

				var last *domain.Frame
				for _, now := range []int64{100, 110} {
					last = record(rec, last, now)
				}
				Expect(writer.Close()).To(Succeed())

				// Reopen the same day, continuity state gone
				var err error
				writer, err = infra.OpenFrameLog(tmpDir, day, logger)
				Expect(err).NotTo(HaveOccurred())

				rec = usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)
				last = nil
				for _, now := range []int64{120, 130} {
					last = record(rec, last, now)
				}

				Expect(dayFileContent()).To(Equal("chromium;100;110\nchromium;120;130\n"))
			})
		})
	})

	Describe("Day rollover", func() {
		It("should route new frames to the next day's file", func() {
			sampler := fixtures.NewScriptedSampler(fixtures.SampleStep{App: "chromium"})
			rec := usecase.NewRecorder(sampler, sampler, writer, nil, policy.DefaultIgnoreList(), gapTolerance, logger)

			var last *domain.Frame
			for _, now := range []int64{100, 110} {
				last = record(rec, last, now)
			}

			nextDay := day.AddDate(0, 0, 1)
			Expect(writer.Rollover(nextDay)).To(Succeed())

			// The tracker drops continuity across midnight
			last = nil
			for _, now := range []int64{200, 210} {
				last = record(rec, last, now)
			}

			Expect(dayFileContent()).To(Equal("chromium;100;110\n"))

			data, err := os.ReadFile(filepath.Join(tmpDir, infra.DayFileName(nextDay)))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("chromium;200;210\n"))
		})
	})
})
