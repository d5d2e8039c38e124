// Command pdpserver exposes the XACML 3.0 PDP over HTTP: it loads
// policy documents from Neo4j (or, for local/test fixture sets, a
// manifest-driven directory) at startup, builds one immutable PDP
// tree, and answers /getDecision requests against it, logging every
// decision to the audit trail.
package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/echo-xacml/pdp/audit"
	"github.com/echo-xacml/pdp/internal/config"
	"github.com/echo-xacml/pdp/internal/logging"
	"github.com/echo-xacml/pdp/internal/xacml/combine"
	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/pdp"
	xpolicy "github.com/echo-xacml/pdp/internal/xacml/policy"
	"github.com/echo-xacml/pdp/internal/xacml/xmlio"
	"github.com/echo-xacml/pdp/internal/xacmlvalidate"
	"github.com/echo-xacml/pdp/middleware"
	"github.com/echo-xacml/pdp/policystore/filestore"
	"github.com/echo-xacml/pdp/policystore/neo4jstore"
	"github.com/echo-xacml/pdp/policystore/rediscache"
	helperutil "github.com/echo-xacml/pdp/util/helper"
)

func main() {
	if err := config.InitConfig(); err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	cfg := config.GetConfig()

	if err := logging.Init("logging"); err != nil {
		panic("failed to initialize logging: " + err.Error())
	}
	defer logging.Log.Sync()

	ctx := context.Background()

	// A policyDir carrying a manifest.yaml is a local/test fixture set
	// (see policystore/filestore): it takes priority over Neo4j so
	// integration runs never need a live graph database. Production
	// deployments leave PolicyDir pointed at an empty directory and
	// fall through to the Neo4j-backed store below.
	roots, library, err := loadPolicies(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to load policy documents", zap.Error(err))
	}

	algorithm, ok := combine.Lookup(cfg.PDP.TopLevelAlgorithm)
	if !ok {
		logging.Fatal("unknown top-level combining algorithm", zap.String("uri", cfg.PDP.TopLevelAlgorithm))
	}

	engine, err := pdp.Init(pdp.Config{
		Roots:          roots,
		Library:        library,
		Algorithm:      algorithm,
		UseBloomFilter: cfg.PDP.BloomPreFilterEnabled,
	})
	if err != nil {
		logging.Fatal("failed to initialize PDP", zap.Error(err))
	}

	ttl, err := time.ParseDuration(cfg.Redis.DefaultCacheTTL)
	if err != nil {
		ttl = 10 * time.Minute
	}
	cache, err := rediscache.New(cfg.Redis.Addr, []byte(os.Getenv(cfg.Redis.EncryptionKeyEnv)), ttl)
	if err != nil {
		logging.Fatal("failed to connect to Redis policy cache", zap.Error(err))
	}
	defer cache.Close()

	esRepo, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index)
	if err != nil {
		logging.Fatal("failed to initialize audit repository", zap.Error(err))
	}
	signerKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logging.Fatal("failed to generate audit signing key", zap.Error(err))
	}
	auditService := audit.NewService(esRepo, audit.NewSigner(signerKey))

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())
	router.Use(middleware.RateLimiter(cache, cfg.PDP.RateLimitPerMinute, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	requestValidator := xacmlvalidate.NewValidationUtil()

	// GET /getDecision is the PEP-facing façade: a query-string request
	// (see xmlio.BuildRequestXML) is turned into the same Request XML a
	// direct XACML client would post, run through the identical parse/
	// validate/evaluate path, and reduced to the small JSON shape a PEP
	// actually needs. The core PDP never sees this handler — it only
	// ever sees *xacmlctx.Request and *pdp.Response.
	router.GET("/getDecision", func(c *gin.Context) {
		reqXML, err := xmlio.BuildRequestXML(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		req, err := xmlio.ParseRequest(strings.NewReader(reqXML))
		if err != nil {
			logging.Warn("malformed XACML request", zap.Error(err))
			c.JSON(http.StatusBadRequest, decisionJSON(pdp.SyntaxErrorResponse(err.Error())))
			return
		}
		if err := requestValidator.ValidateRequest(req); err != nil {
			logging.Warn("request failed structural validation", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := engine.Evaluate(c.Request.Context(), req)
		if err != nil {
			logging.Error("PDP evaluation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, decisionJSON(resp))

		record := decisionRecord(req, resp)
		if err := auditService.LogDecision(c.Request.Context(), record); err != nil {
			logging.Error("failed to record audit log", zap.Error(err))
		}
	})

	router.GET("/audit", func(c *gin.Context) {
		q := audit.Query{From: c.Query("from"), To: c.Query("to"), Subject: c.Query("subject"), Resource: c.Query("resource")}
		if err := audit.ValidateQuery(q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		from, err := helperutil.ParseTime(q.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from parameter"})
			return
		}
		to, err := helperutil.ParseTime(q.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to parameter"})
			return
		}
		records, err := auditService.QueryDecisions(c.Request.Context(), from, to, q.Subject, q.Resource)
		if err != nil {
			logging.Error("audit query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, records)
	})

	addr := ":" + cfg.Server.Port
	logging.Info("pdpserver listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logging.Fatal("server exited", zap.Error(err))
	}
}

// decisionJSON reduces a Response's single Result to the
// {decision, obligations, reason} shape the PEP façade returns:
// "reason" carries the Result's Status message whenever one is set,
// whether the decision is Indeterminate or a Permit/Deny that absorbed
// an Indeterminate, and is nil otherwise.
func decisionJSON(resp *pdp.Response) gin.H {
	r := resp.Results[0]
	var decision string
	var reason []string
	switch {
	case r.NotApplicable:
		decision = "NotApplicable"
	case r.Indeterminate:
		decision = "Indeterminate"
		if r.Status != nil && r.Status.Message != "" {
			reason = append(reason, r.Status.Message)
		}
	default:
		decision = r.Decision.String()
		if r.Status != nil && r.Status.Message != "" {
			reason = append(reason, r.Status.Message)
		}
	}
	return gin.H{
		"decision":    decision,
		"obligations": r.Obligations,
		"reason":      reason,
	}
}

func decisionRecord(req *xacmlctx.Request, resp *pdp.Response) audit.Record {
	r := resp.Results[0]
	decision := "Indeterminate"
	switch {
	case r.NotApplicable:
		decision = "NotApplicable"
	case r.Indeterminate:
		decision = "Indeterminate"
	default:
		decision = r.Decision.String()
	}
	return audit.Record{
		Timestamp:        time.Now().UTC(),
		Decision:         decision,
		Subject:          firstAttributeValue(req, xacmlctx.CategorySubject),
		Resource:         firstAttributeValue(req, xacmlctx.CategoryResource),
		Action:           firstAttributeValue(req, xacmlctx.CategoryAction),
		PolicyReferences: r.PolicyIdentifiers,
	}
}

// firstAttributeValue is a best-effort human-readable label for the
// audit trail: the first value of the first attribute in category,
// regardless of its AttributeId.
func firstAttributeValue(req *xacmlctx.Request, category string) string {
	attrs := req.Attributes[category]
	if len(attrs) == 0 || attrs[0].Values == nil || attrs[0].Values.Size() == 0 {
		return ""
	}
	return attrs[0].Values.Values[0].String()
}

// loadPolicies picks the policy backend: a PolicyDir carrying a
// manifest.yaml wins (filestore), otherwise the Neo4j-backed store is
// opened and queried.
func loadPolicies(ctx context.Context, cfg *config.Configuration) ([]xpolicy.Node, []xpolicy.Node, error) {
	if cfg.PDP.PolicyDir != "" {
		if _, err := os.Stat(filepath.Join(cfg.PDP.PolicyDir, "manifest.yaml")); err == nil {
			return filestore.LoadAll(cfg.PDP.PolicyDir)
		}
	}

	store, err := neo4jstore.New(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close(ctx)
	return store.LoadAll(ctx)
}
