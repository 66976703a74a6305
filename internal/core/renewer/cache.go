package renewer

import (
	"go.uber.org/zap"

	"github.com/yehevah/saml-sts/internal/core/domain"
)

// replaceCachedToken is the cache synchronizer: it removes the two
// stale keys of the superseded token and, when the renewed assertion
// carries a signature, inserts the new record under the new identifier
// and the new signature fingerprint.
//
// Stale-key removal is best effort: a failed removal is logged, not
// fatal, since the stale entry expires on its own. Insertion failures
// are fatal; a renewal the service cannot track is not returned.
//
// An unsigned renewal (signing disabled) stores nothing: such tokens
// lose cache tracking for later renewal cycles.
func (r *Renewer) replaceCachedToken(
	p Parameters,
	renewed *domain.Assertion,
	serialized []byte,
	signatureValue []byte,
	oldID, oldFingerprint string,
) error {
	for _, key := range []string{oldID, oldFingerprint} {
		if err := p.Cache.Remove(key); err != nil {
			r.logger.Warn("failed to remove superseded cache entry",
				zap.String("key", key), zap.Error(err))
			r.metrics.RecordCacheCleanupFailure()
		}
	}

	if len(signatureValue) == 0 {
		r.logger.Debug("renewed assertion is unsigned, not cached",
			zap.String("token_id", renewed.ID()))
		return nil
	}

	window, err := renewed.Window()
	if err != nil {
		return domain.RequestFailedError("cannot renew assertion", err)
	}

	record := &domain.CachedTokenRecord{
		ID:         renewed.ID(),
		Assertion:  serialized,
		Expires:    window.NotOnOrAfter,
		Principal:  p.Principal,
		Realm:      p.Realm,
		Properties: p.Renewing.Properties(),
	}
	if err := p.Cache.Put(renewed.ID(), record); err != nil {
		return domain.RequestFailedError("cannot renew assertion", err)
	}
	if err := p.Cache.Put(domain.Fingerprint(signatureValue), record); err != nil {
		return domain.RequestFailedError("cannot renew assertion", err)
	}
	return nil
}
