package storage

// TenantSchema is the SQL schema of every tenant store. Timestamps are stored
// as RFC 3339 text in UTC and calendar dates as YYYY-MM-DD. References between
// records are plain integer columns without foreign keys.
const TenantSchema = `
CREATE TABLE IF NOT EXISTS companies (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT NOT NULL,
    website         TEXT NOT NULL DEFAULT '',
    industry        TEXT NOT NULL DEFAULT '',
    company_size    TEXT NOT NULL DEFAULT '',
    annual_revenue  REAL NULL,
    phone           TEXT NOT NULL DEFAULT '',
    email           TEXT NOT NULL DEFAULT '',
    street          TEXT NOT NULL DEFAULT '',
    city            TEXT NOT NULL DEFAULT '',
    state           TEXT NOT NULL DEFAULT '',
    country         TEXT NOT NULL DEFAULT '',
    postal_code     TEXT NOT NULL DEFAULT '',
    company_type    TEXT NOT NULL DEFAULT 'prospect'
                    CHECK(company_type IN ('prospect', 'customer', 'partner', 'vendor')),
    priority        TEXT NOT NULL DEFAULT 'medium'
                    CHECK(priority IN ('low', 'medium', 'high', 'critical')),
    description     TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name      TEXT NOT NULL,
    last_name       TEXT NOT NULL,
    email           TEXT NOT NULL UNIQUE COLLATE NOCASE,
    phone           TEXT NOT NULL DEFAULT '',
    mobile          TEXT NOT NULL DEFAULT '',
    title           TEXT NOT NULL DEFAULT '',
    department      TEXT NOT NULL DEFAULT '',
    company_id      INTEGER NULL,
    linkedin_url    TEXT NOT NULL DEFAULT '',
    twitter_handle  TEXT NOT NULL DEFAULT '',
    street          TEXT NOT NULL DEFAULT '',
    city            TEXT NOT NULL DEFAULT '',
    state           TEXT NOT NULL DEFAULT '',
    country         TEXT NOT NULL DEFAULT '',
    postal_code     TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'lead'
                    CHECK(status IN ('lead', 'prospect', 'customer', 'partner')),
    lead_source     TEXT NOT NULL DEFAULT '',
    lead_score      INTEGER NOT NULL DEFAULT 0 CHECK(lead_score BETWEEN 0 AND 100),
    lead_score_manual INTEGER NOT NULL DEFAULT 0,
    tags            TEXT NOT NULL DEFAULT '',
    notes           TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deals (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    title               TEXT NOT NULL,
    value               REAL NOT NULL DEFAULT 0 CHECK(value >= 0),
    stage               TEXT NOT NULL DEFAULT 'qualification'
                        CHECK(stage IN ('qualification', 'needs_analysis', 'proposal', 'negotiation', 'closed_won', 'closed_lost')),
    status              TEXT NOT NULL DEFAULT 'open'
                        CHECK(status IN ('open', 'won', 'lost')),
    probability         INTEGER NOT NULL DEFAULT 10 CHECK(probability BETWEEN 0 AND 100),
    expected_close_date TEXT NULL,
    actual_close_date   TEXT NULL,
    contact_id          INTEGER NULL,
    company_id          INTEGER NULL,
    description         TEXT NOT NULL DEFAULT '',
    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_type     TEXT NOT NULL
                      CHECK(activity_type IN ('call', 'email', 'meeting', 'task', 'note')),
    subject           TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    activity_date     TEXT NOT NULL,
    duration_minutes  INTEGER NULL,
    contact_id        INTEGER NULL,
    company_id        INTEGER NULL,
    deal_id           INTEGER NULL,
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK(status IN ('pending', 'completed', 'cancelled')),
    priority          TEXT NOT NULL DEFAULT 'medium'
                      CHECK(priority IN ('low', 'medium', 'high', 'critical')),
    created_at        TEXT NOT NULL,
    updated_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    content     TEXT NOT NULL,
    contact_id  INTEGER NULL,
    company_id  INTEGER NULL,
    deal_id     INTEGER NULL,
    created_at  TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS contacts_fts USING fts5(
    first_name,
    last_name,
    email,
    title,
    content='contacts',
    content_rowid='id'
);

CREATE VIRTUAL TABLE IF NOT EXISTS companies_fts USING fts5(
    name,
    industry,
    description,
    content='companies',
    content_rowid='id'
);

CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
CREATE INDEX IF NOT EXISTS idx_contacts_last_name ON contacts(last_name);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_type ON companies(company_type);
CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_deals_contact ON deals(contact_id);
CREATE INDEX IF NOT EXISTS idx_deals_company ON deals(company_id);
CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(activity_date);
CREATE INDEX IF NOT EXISTS idx_activities_contact ON activities(contact_id);
CREATE INDEX IF NOT EXISTS idx_activities_company ON activities(company_id);
CREATE INDEX IF NOT EXISTS idx_activities_deal ON activities(deal_id);
CREATE INDEX IF NOT EXISTS idx_notes_contact ON notes(contact_id);
CREATE INDEX IF NOT EXISTS idx_notes_company ON notes(company_id);
CREATE INDEX IF NOT EXISTS idx_notes_deal ON notes(deal_id);
`

// TenantTriggers keep the FTS5 tables in sync with their content tables.
const TenantTriggers = `
CREATE TRIGGER IF NOT EXISTS contacts_ai AFTER INSERT ON contacts BEGIN
    INSERT INTO contacts_fts(rowid, first_name, last_name, email, title)
    VALUES (new.id, new.first_name, new.last_name, new.email, new.title);
END;
CREATE TRIGGER IF NOT EXISTS contacts_ad AFTER DELETE ON contacts BEGIN
    INSERT INTO contacts_fts(contacts_fts, rowid, first_name, last_name, email, title)
    VALUES ('delete', old.id, old.first_name, old.last_name, old.email, old.title);
END;
CREATE TRIGGER IF NOT EXISTS contacts_au AFTER UPDATE ON contacts BEGIN
    INSERT INTO contacts_fts(contacts_fts, rowid, first_name, last_name, email, title)
    VALUES ('delete', old.id, old.first_name, old.last_name, old.email, old.title);
    INSERT INTO contacts_fts(rowid, first_name, last_name, email, title)
    VALUES (new.id, new.first_name, new.last_name, new.email, new.title);
END;

CREATE TRIGGER IF NOT EXISTS companies_ai AFTER INSERT ON companies BEGIN
    INSERT INTO companies_fts(rowid, name, industry, description)
    VALUES (new.id, new.name, new.industry, new.description);
END;
CREATE TRIGGER IF NOT EXISTS companies_ad AFTER DELETE ON companies BEGIN
    INSERT INTO companies_fts(companies_fts, rowid, name, industry, description)
    VALUES ('delete', old.id, old.name, old.industry, old.description);
END;
CREATE TRIGGER IF NOT EXISTS companies_au AFTER UPDATE ON companies BEGIN
    INSERT INTO companies_fts(companies_fts, rowid, name, industry, description)
    VALUES ('delete', old.id, old.name, old.industry, old.description);
    INSERT INTO companies_fts(rowid, name, industry, description)
    VALUES (new.id, new.name, new.industry, new.description);
END;
`

// tenantDSN opens a tenant file with WAL journaling and a busy timeout so
// readers and the single writer of a tenant do not fail on lock contention.
func tenantDSN(path string) string {
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-16000)"
}
