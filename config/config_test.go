package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fpl-tracker/fpl-proxy/config"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		for _, key := range []string{"PORT", "SERVER_PORT", "LEAGUE_ID", "UPSTREAM_BASE_URL", "LOGGING_LEVEL"} {
			if val, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, val)
				Expect(os.Unsetenv(key)).To(Succeed())
			}
		}
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	writeConfig := func(content string) {
		err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(content), 0644)
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("LoadFrom", func() {
		Context("without a config file", func() {
			It("should use defaults", func() {
				cfg, err := config.LoadFrom(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(config.DefaultPort))
				Expect(cfg.Server.Addr()).To(Equal("0.0.0.0:5000"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.Upstream.BaseURL).To(Equal(config.DefaultBaseURL))
				Expect(cfg.Upstream.UserAgent).To(Equal(config.DefaultUserAgent))
				Expect(config.Duration(cfg.Upstream.Timeout)).To(BeZero())
				Expect(cfg.League.ID).To(Equal(config.DefaultLeagueID))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))
				Expect(cfg.Metrics.Enabled).To(BeTrue())
			})
		})

		Context("with environment variables", func() {
			It("should read the listening port from PORT", func() {
				GinkgoT().Setenv("PORT", "10000")

				cfg, err := config.LoadFrom(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(10000))
			})

			It("should override the league identifier", func() {
				GinkgoT().Setenv("LEAGUE_ID", "42")

				cfg, err := config.LoadFrom(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.League.ID).To(Equal(42))
			})

			It("should reject a port out of range", func() {
				GinkgoT().Setenv("PORT", "70000")

				_, err := config.LoadFrom(tempDir)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a valid config file", func() {
			BeforeEach(func() {
				writeConfig(`
server:
  host: "127.0.0.1"
  port: 8081
  environment: "prod"

upstream:
  base_url: "http://localhost:9000/api"
  timeout: "10s"

league:
  id: 1234

logging:
  level: "debug"
`)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.LoadFrom(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Addr()).To(Equal("127.0.0.1:8081"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
				Expect(cfg.Upstream.BaseURL).To(Equal("http://localhost:9000/api"))
				Expect(config.Duration(cfg.Upstream.Timeout)).To(Equal(10 * time.Second))
				Expect(cfg.League.ID).To(Equal(1234))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})

			It("should let PORT win over the file", func() {
				GinkgoT().Setenv("PORT", "9999")

				cfg, err := config.LoadFrom(tempDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Port).To(Equal(9999))
			})
		})

		Context("with an invalid config file", func() {
			It("should reject an unknown environment", func() {
				writeConfig("server:\n  environment: \"qa\"\n")
				_, err := config.LoadFrom(tempDir)
				Expect(err).To(HaveOccurred())
			})

			It("should reject a non-http base URL", func() {
				writeConfig("upstream:\n  base_url: \"ftp://example.com\"\n")
				_, err := config.LoadFrom(tempDir)
				Expect(err).To(HaveOccurred())
			})

			It("should reject a malformed duration", func() {
				writeConfig("upstream:\n  timeout: \"soon\"\n")
				_, err := config.LoadFrom(tempDir)
				Expect(err).To(HaveOccurred())
			})

			It("should reject unparsable YAML", func() {
				writeConfig("server: [::")
				_, err := config.LoadFrom(tempDir)
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			var err error
			cfg, err = config.LoadFrom(tempDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should accept the defaults", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a zero league identifier", func() {
			cfg.League.ID = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an empty user agent", func() {
			cfg.Upstream.UserAgent = ""
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an unknown log level", func() {
			cfg.Logging.Level = "verbose"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a negative duration", func() {
			cfg.Server.ShutdownTimeout = "-1s"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero metrics buffer", func() {
			cfg.Metrics.BufferSize = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
